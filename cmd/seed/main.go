// Command seed populates a development database with the reference catalogs,
// the standard permission blocks and the default always-show visibility rule.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erpacceso/api/internal/config"
	"github.com/erpacceso/api/internal/infra/postgres"
	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/moduletree"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/visibility"
)

func main() {
	schemaFile := flag.String("schema", "", "Apply this schema file before seeding")
	flag.Parse()

	if err := run(*schemaFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Seed completed successfully")
}

func run(schemaFile string) error {
	cfg := config.Load()

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if schemaFile != "" {
		schema, err := os.ReadFile(schemaFile)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		if _, err := db.ExecContext(ctx, string(schema)); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		fmt.Printf("Applied schema %s\n", schemaFile)
	}

	if err := seedScopedCatalogs(ctx, db); err != nil {
		return err
	}
	if err := seedModuleTree(ctx, db); err != nil {
		return err
	}
	if err := seedGlobalCatalogs(ctx, db); err != nil {
		return err
	}
	if err := seedVisibility(ctx, db); err != nil {
		return err
	}
	return nil
}

func seedScopedCatalogs(ctx context.Context, db *postgres.DB) error {
	companies := postgres.NewCompanyRepository(db)
	branches := postgres.NewBranchRepository(db)
	branchRes := postgres.NewBranchResourceRepository(db)
	companyRes := postgres.NewCompanyResourceRepository(db)

	company, err := companies.GetByName(ctx, "Demo Company")
	if shared.IsNotFound(err) {
		company, err = scopecat.NewCompany("Demo Company")
		if err != nil {
			return err
		}
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		fmt.Println("Created company: Demo Company")
	} else if err != nil {
		return err
	}

	branch, err := branches.GetByName(ctx, company.ID(), "Main Branch")
	if shared.IsNotFound(err) {
		branch, err = scopecat.NewBranch(company.ID(), "Main Branch")
		if err != nil {
			return err
		}
		if err := branches.Create(ctx, branch); err != nil {
			return err
		}
		fmt.Println("Created branch: Main Branch")

		for _, name := range []string{"Central Warehouse", "Returns Warehouse"} {
			res, err := scopecat.NewBranchResource(branch.ID(), scopecat.KindWarehouse, name)
			if err != nil {
				return err
			}
			if err := branchRes.Create(ctx, res); err != nil {
				return err
			}
		}
		for _, name := range []string{"Register 1", "Register 2"} {
			res, err := scopecat.NewBranchResource(branch.ID(), scopecat.KindCashRegister, name)
			if err != nil {
				return err
			}
			if err := branchRes.Create(ctx, res); err != nil {
				return err
			}
		}
		for _, name := range []string{"Sales Panel", "Inventory Panel"} {
			res, err := scopecat.NewCompanyResource(company.ID(), scopecat.KindControlPanel, name)
			if err != nil {
				return err
			}
			if err := companyRes.Create(ctx, res); err != nil {
				return err
			}
		}
		for _, name := range []string{"Ana Torres", "Luis Mendez"} {
			res, err := scopecat.NewCompanyResource(company.ID(), scopecat.KindSeller, name)
			if err != nil {
				return err
			}
			if err := companyRes.Create(ctx, res); err != nil {
				return err
			}
		}
		fmt.Println("Created branch resources and company resources")
	} else if err != nil {
		return err
	}
	return nil
}

func seedModuleTree(ctx context.Context, db *postgres.DB) error {
	tree := postgres.NewModuleTreeRepository(db)

	layout := map[string]map[string][]string{
		"Sales": {
			"Quotes":   {"Drafting", "Approval"},
			"Invoices": {"Issuing", "Credit Notes"},
		},
		"Inventory": {
			"Stock":     {"Counts", "Adjustments"},
			"Transfers": {},
		},
		"Purchasing": {
			"Orders": {"Placement", "Reception"},
		},
	}

	for moduleName, levels := range layout {
		module, err := tree.GetModuleByName(ctx, moduleName)
		if shared.IsNotFound(err) {
			module, err = moduletree.NewModule(moduleName)
			if err != nil {
				return err
			}
			if err := tree.CreateModule(ctx, module); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for levelName, sublevels := range levels {
			level, err := tree.GetLevelByName(ctx, module.ID(), levelName)
			if shared.IsNotFound(err) {
				level, err = moduletree.NewLevel(module.ID(), levelName)
				if err != nil {
					return err
				}
				if err := tree.CreateLevel(ctx, level); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			for _, sublevelName := range sublevels {
				_, err := tree.GetSublevelByName(ctx, level.ID(), sublevelName)
				if !shared.IsNotFound(err) {
					if err != nil {
						return err
					}
					continue
				}
				sublevel, err := moduletree.NewSublevel(level.ID(), sublevelName)
				if err != nil {
					return err
				}
				if err := tree.CreateSublevel(ctx, sublevel); err != nil {
					return err
				}
			}
		}
	}
	fmt.Println("Seeded module tree")
	return nil
}

func seedGlobalCatalogs(ctx context.Context, db *postgres.DB) error {
	catalog := postgres.NewGlobalCatalogRepository(db)

	actions := []struct {
		group  string
		action string
		kind   globalcat.ValueKind
	}{
		{"sales", "allow_discount", globalcat.KindBool},
		{"sales", "max_discount", globalcat.KindPercent},
		{"sales", "credit_limit", globalcat.KindDecimal},
		{"sales", "max_open_quotes", globalcat.KindInt},
		{"inventory", "allow_negative_stock", globalcat.KindBool},
		{"inventory", "adjustment_reason", globalcat.KindText},
		{"purchasing", "order_approval_limit", globalcat.KindDecimal},
	}
	for _, a := range actions {
		perm, err := globalcat.NewActionPermission(a.group, a.action, a.kind)
		if err != nil {
			return err
		}
		if err := catalog.CreateActionPermission(ctx, perm); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}

	matrix := []struct {
		name  string
		flags globalcat.MatrixFlags
	}{
		{"Sales Orders", globalcat.MatrixFlags{CanCreate: true, CanUpdate: true}},
		{"Purchase Orders", globalcat.MatrixFlags{CanCreate: true}},
		{"Stock Adjustments", globalcat.MatrixFlags{}},
	}
	for _, m := range matrix {
		perm, err := globalcat.NewMatrixPermission(m.name, m.flags)
		if err != nil {
			return err
		}
		if err := catalog.CreateMatrixPermission(ctx, perm); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}

	for _, name := range []string{"Cash", "Card", "Transfer", "Store Credit"} {
		method, err := globalcat.NewPaymentMethod(name)
		if err != nil {
			return err
		}
		if err := catalog.CreatePaymentMethod(ctx, method); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	fmt.Println("Seeded global catalogs")
	return nil
}

// seedVisibility creates the standard blocks and a default zero-trigger rule
// that shows every block, so a fresh install renders the whole flow until
// narrower rules are configured.
func seedVisibility(ctx context.Context, db *postgres.DB) error {
	repo := postgres.NewVisibilityRepository(db)

	builders := []func(order int) (*visibility.Block, error){
		func(o int) (*visibility.Block, error) {
			return visibility.NewScopedBlock("warehouses", "Warehouses", visibility.EntityWarehouse, o)
		},
		func(o int) (*visibility.Block, error) {
			return visibility.NewScopedBlock("cash-registers", "Cash Registers", visibility.EntityCashRegister, o)
		},
		func(o int) (*visibility.Block, error) {
			return visibility.NewScopedBlock("control-panels", "Control Panels", visibility.EntityControlPanel, o)
		},
		func(o int) (*visibility.Block, error) {
			return visibility.NewScopedBlock("sellers", "Sellers", visibility.EntitySeller, o)
		},
		func(o int) (*visibility.Block, error) {
			return visibility.NewGlobalBlock("actions", "Action Permissions", visibility.EntityAction, "", o)
		},
		func(o int) (*visibility.Block, error) {
			return visibility.NewGlobalBlock("matrix", "Permission Matrix", visibility.EntityMatrix, "", o)
		},
		func(o int) (*visibility.Block, error) {
			return visibility.NewGlobalBlock("payment-methods", "Payment Methods", visibility.EntityPaymentMethod, "", o)
		},
	}

	blocks := make([]*visibility.Block, 0, len(builders))
	for i, build := range builders {
		block, err := build(i)
		if err != nil {
			return err
		}
		existing, err := repo.GetBlockByCode(ctx, block.Code())
		if err == nil {
			blocks = append(blocks, existing)
			continue
		}
		if !shared.IsNotFound(err) {
			return err
		}
		if err := repo.CreateBlock(ctx, block); err != nil {
			return err
		}
		blocks = append(blocks, block)
	}

	rules, err := repo.ListActiveRulesWithLinks(ctx)
	if err != nil {
		return err
	}
	for _, r := range rules {
		if r.Rule.Name() == "Default" {
			return nil
		}
	}

	rule, err := visibility.NewRule("Default", 0, visibility.MatchAny, "Shows every block when no narrower rule applies")
	if err != nil {
		return err
	}
	if err := repo.CreateRule(ctx, rule); err != nil {
		return err
	}
	for i, block := range blocks {
		rb, err := visibility.NewRuleBlock(rule.ID(), block.ID(), visibility.ModeShow, i)
		if err != nil {
			return err
		}
		if err := repo.AddRuleBlock(ctx, rb); err != nil {
			return err
		}
	}
	fmt.Println("Seeded permission blocks and default visibility rule")
	return nil
}
