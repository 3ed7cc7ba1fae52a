package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/visibility"
)

// VisibilityRepository implements visibility.Repository using PostgreSQL.
type VisibilityRepository struct {
	db *DB
}

// NewVisibilityRepository creates a new VisibilityRepository.
func NewVisibilityRepository(db *DB) *VisibilityRepository {
	return &VisibilityRepository{db: db}
}

// =============================================================================
// Blocks
// =============================================================================

// CreateBlock persists a new permission block.
func (r *VisibilityRepository) CreateBlock(ctx context.Context, b *visibility.Block) error {
	query := `
		INSERT INTO permission_blocks (
			id, code, name, kind, scoped_entity, global_entity,
			action_group, is_active, display_order, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID().String(),
		b.Code(),
		b.Name(),
		string(b.Kind()),
		nullString(string(b.ScopedEntity())),
		nullString(string(b.GlobalEntity())),
		nullString(b.ActionGroup()),
		b.IsActive(),
		b.Order(),
		b.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return visibility.ErrBlockCodeExists
		}
		return fmt.Errorf("failed to create block: %w", err)
	}

	return nil
}

// GetBlockByCode retrieves a block by its code.
func (r *VisibilityRepository) GetBlockByCode(ctx context.Context, code string) (*visibility.Block, error) {
	query := `
		SELECT id, code, name, kind, scoped_entity, global_entity,
		       action_group, is_active, display_order, created_at
		FROM permission_blocks
		WHERE code = $1
	`

	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get block: %w", err)
		}
		return nil, visibility.ErrBlockNotFound
	}

	return scanBlockRow(rows)
}

// ListActiveBlocks lists active blocks in display order.
func (r *VisibilityRepository) ListActiveBlocks(ctx context.Context) ([]*visibility.Block, error) {
	query := `
		SELECT id, code, name, kind, scoped_entity, global_entity,
		       action_group, is_active, display_order, created_at
		FROM permission_blocks
		WHERE is_active = TRUE
		ORDER BY display_order ASC, code ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*visibility.Block
	for rows.Next() {
		b, err := scanBlockRow(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}

// UpdateBlock persists block changes.
func (r *VisibilityRepository) UpdateBlock(ctx context.Context, b *visibility.Block) error {
	query := `
		UPDATE permission_blocks
		SET name = $2, is_active = $3, display_order = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, b.ID().String(), b.Name(), b.IsActive(), b.Order())
	if err != nil {
		return fmt.Errorf("failed to update block: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return visibility.ErrBlockNotFound
	}

	return nil
}

// =============================================================================
// Rules
// =============================================================================

// CreateRule persists a new visibility rule.
func (r *VisibilityRepository) CreateRule(ctx context.Context, rule *visibility.Rule) error {
	query := `
		INSERT INTO visibility_rules (id, name, is_active, priority, match_mode, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID().String(),
		rule.Name(),
		rule.IsActive(),
		rule.Priority(),
		string(rule.MatchMode()),
		rule.Notes(),
		rule.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rule %q: %w", rule.Name(), shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

// GetRuleByID retrieves a rule by ID.
func (r *VisibilityRepository) GetRuleByID(ctx context.Context, id shared.ID) (*visibility.Rule, error) {
	query := `
		SELECT id, name, is_active, priority, match_mode, notes, created_at
		FROM visibility_rules
		WHERE id = $1
	`

	var (
		idStr, name, modeStr, notes string
		isActive                    bool
		priority                    int
		createdAt                   time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&idStr, &name, &isActive, &priority, &modeStr, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, visibility.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	ruleID, _ := shared.IDFromString(idStr)
	return visibility.ReconstituteRule(ruleID, name, isActive, priority, visibility.MatchMode(modeStr), notes, createdAt), nil
}

// UpdateRule persists rule changes.
func (r *VisibilityRepository) UpdateRule(ctx context.Context, rule *visibility.Rule) error {
	query := `
		UPDATE visibility_rules
		SET name = $2, is_active = $3, priority = $4, notes = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		rule.ID().String(),
		rule.Name(),
		rule.IsActive(),
		rule.Priority(),
		rule.Notes(),
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return visibility.ErrRuleNotFound
	}

	return nil
}

// =============================================================================
// Triggers and rule→block links
// =============================================================================

// AddTrigger persists a rule trigger.
func (r *VisibilityRepository) AddTrigger(ctx context.Context, t *visibility.Trigger) error {
	query := `
		INSERT INTO rule_triggers (id, rule_id, target, node_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID().String(),
		t.RuleID().String(),
		string(t.Target()),
		t.NodeID().String(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return visibility.ErrRuleNotFound
		}
		return fmt.Errorf("failed to add trigger: %w", err)
	}

	return nil
}

// RemoveTrigger removes a rule trigger.
func (r *VisibilityRepository) RemoveTrigger(ctx context.Context, id shared.ID) error {
	query := `DELETE FROM rule_triggers WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to remove trigger: %w", err)
	}

	return nil
}

// AddRuleBlock links a rule to a block.
func (r *VisibilityRepository) AddRuleBlock(ctx context.Context, rb *visibility.RuleBlock) error {
	query := `
		INSERT INTO rule_blocks (rule_id, block_id, mode, display_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (rule_id, block_id) DO UPDATE
		SET mode = EXCLUDED.mode, display_order = EXCLUDED.display_order
	`

	_, err := r.db.ExecContext(ctx, query,
		rb.RuleID().String(),
		rb.BlockID().String(),
		string(rb.Mode()),
		rb.Order(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return visibility.ErrRuleNotFound
		}
		return fmt.Errorf("failed to add rule block: %w", err)
	}

	return nil
}

// RemoveRuleBlock unlinks a block from a rule.
func (r *VisibilityRepository) RemoveRuleBlock(ctx context.Context, ruleID, blockID shared.ID) error {
	query := `DELETE FROM rule_blocks WHERE rule_id = $1 AND block_id = $2`

	_, err := r.db.ExecContext(ctx, query, ruleID.String(), blockID.String())
	if err != nil {
		return fmt.Errorf("failed to remove rule block: %w", err)
	}

	return nil
}

// ListActiveRulesWithLinks returns active rules joined with their triggers
// and block links, ordered by (priority desc, name asc).
func (r *VisibilityRepository) ListActiveRulesWithLinks(ctx context.Context) ([]*visibility.RuleWithLinks, error) {
	ruleQuery := `
		SELECT id, name, is_active, priority, match_mode, notes, created_at
		FROM visibility_rules
		WHERE is_active = TRUE
		ORDER BY priority DESC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, ruleQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var (
		result []*visibility.RuleWithLinks
		byID   = make(map[string]*visibility.RuleWithLinks)
	)
	for rows.Next() {
		var (
			idStr, name, modeStr, notes string
			isActive                    bool
			priority                    int
			createdAt                   time.Time
		)
		if err := rows.Scan(&idStr, &name, &isActive, &priority, &modeStr, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		ruleID, _ := shared.IDFromString(idStr)
		rwl := &visibility.RuleWithLinks{
			Rule: visibility.ReconstituteRule(ruleID, name, isActive, priority, visibility.MatchMode(modeStr), notes, createdAt),
		}
		result = append(result, rwl)
		byID[idStr] = rwl
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	if err := r.attachTriggers(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.attachBlocks(ctx, byID); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *VisibilityRepository) attachTriggers(ctx context.Context, byID map[string]*visibility.RuleWithLinks) error {
	query := `
		SELECT t.id, t.rule_id, t.target, t.node_id
		FROM rule_triggers t
		INNER JOIN visibility_rules vr ON vr.id = t.rule_id
		WHERE vr.is_active = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list triggers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr, ruleIDStr, targetStr, nodeIDStr string
		if err := rows.Scan(&idStr, &ruleIDStr, &targetStr, &nodeIDStr); err != nil {
			return fmt.Errorf("failed to scan trigger: %w", err)
		}

		rwl, ok := byID[ruleIDStr]
		if !ok {
			continue
		}

		id, _ := shared.IDFromString(idStr)
		ruleID, _ := shared.IDFromString(ruleIDStr)
		nodeID, _ := shared.IDFromString(nodeIDStr)
		t, err := visibility.ReconstituteTrigger(id, ruleID, visibility.TriggerTarget(targetStr), nodeID)
		if err != nil {
			return fmt.Errorf("trigger %s: %w", idStr, err)
		}
		rwl.Triggers = append(rwl.Triggers, t)
	}

	return rows.Err()
}

func (r *VisibilityRepository) attachBlocks(ctx context.Context, byID map[string]*visibility.RuleWithLinks) error {
	query := `
		SELECT rb.rule_id, rb.block_id, rb.mode, rb.display_order,
		       b.id, b.code, b.name, b.kind, b.scoped_entity, b.global_entity,
		       b.action_group, b.is_active, b.display_order, b.created_at
		FROM rule_blocks rb
		INNER JOIN permission_blocks b ON b.id = rb.block_id
		INNER JOIN visibility_rules vr ON vr.id = rb.rule_id
		WHERE vr.is_active = TRUE
		ORDER BY rb.rule_id, rb.display_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to list rule blocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ruleIDStr, blockIDStr, modeStr     string
			linkOrder                          int
			bIDStr, code, name, kindStr        string
			scopedEntity, globalEntity, actGrp sql.NullString
			isActive                           bool
			displayOrder                       int
			createdAt                          time.Time
		)
		if err := rows.Scan(
			&ruleIDStr, &blockIDStr, &modeStr, &linkOrder,
			&bIDStr, &code, &name, &kindStr, &scopedEntity, &globalEntity,
			&actGrp, &isActive, &displayOrder, &createdAt,
		); err != nil {
			return fmt.Errorf("failed to scan rule block: %w", err)
		}

		rwl, ok := byID[ruleIDStr]
		if !ok {
			continue
		}

		ruleID, _ := shared.IDFromString(ruleIDStr)
		blockID, _ := shared.IDFromString(blockIDStr)
		bID, _ := shared.IDFromString(bIDStr)

		rwl.Blocks = append(rwl.Blocks, &visibility.BlockLink{
			Link: visibility.ReconstituteRuleBlock(ruleID, blockID, visibility.BlockMode(modeStr), linkOrder),
			Block: visibility.ReconstituteBlock(
				bID, code, name,
				visibility.BlockKind(kindStr),
				visibility.ScopedEntity(nullStringValue(scopedEntity)),
				visibility.GlobalEntity(nullStringValue(globalEntity)),
				nullStringValue(actGrp),
				isActive, displayOrder, createdAt,
			),
		})
	}

	return rows.Err()
}

func scanBlockRow(rows *sql.Rows) (*visibility.Block, error) {
	var (
		idStr, code, name, kindStr         string
		scopedEntity, globalEntity, actGrp sql.NullString
		isActive                           bool
		displayOrder                       int
		createdAt                          time.Time
	)

	if err := rows.Scan(
		&idStr, &code, &name, &kindStr, &scopedEntity, &globalEntity,
		&actGrp, &isActive, &displayOrder, &createdAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan block: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	return visibility.ReconstituteBlock(
		id, code, name,
		visibility.BlockKind(kindStr),
		visibility.ScopedEntity(nullStringValue(scopedEntity)),
		visibility.GlobalEntity(nullStringValue(globalEntity)),
		nullStringValue(actGrp),
		isActive, displayOrder, createdAt,
	), nil
}
