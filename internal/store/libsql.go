package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// maxNameRetries caps the rename-and-retry loop on an owner-scoped workflow
// name conflict. Past the cap the save fails with a CONFLICT error instead of
// looping indefinitely.
const maxNameRetries = 25

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// DB returns the underlying *sql.DB for advanced usage.
func (s *LibSQLStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Vacuum runs VACUUM on the database.
func (s *LibSQLStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// --- Profiles ---

func (s *LibSQLStore) UpsertProfile(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, full_name, avatar_url, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email=excluded.email, full_name=excluded.full_name, avatar_url=excluded.avatar_url`,
		p.ID, p.Email, nullStr(p.FullName), nullStr(p.AvatarURL), timeOrNow(p.CreatedAt),
	)
	return err
}

func (s *LibSQLStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	p := &Profile{}
	var fullName, avatarURL sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, avatar_url, created_at FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Email, &fullName, &avatarURL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("profile", id)
	}
	if err != nil {
		return nil, err
	}
	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	return p, nil
}

// --- Workflows ---

// SaveWorkflow persists a draft for the given owner. For a first save the
// workflow row is inserted; for an update (draft.ID set) the row is updated in
// place. Either way all child node/edge rows are replaced with the draft's
// current lists. The whole operation runs in a single transaction so a failed
// child insert cannot leave a workflow with zero children.
//
// On an owner-scoped name conflict the name gets a " (n)" suffix with
// incrementing n, bounded by maxNameRetries.
func (s *LibSQLStore) SaveWorkflow(ctx context.Context, ownerID string, draft *WorkflowDraft) (*Workflow, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "workflow name is required")
	}

	version := draft.Version
	if version == "" {
		version = "1.0.0"
	}
	meta := WorkflowMetadata{NodeCount: len(draft.Nodes), EdgeCount: len(draft.Edges)}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "marshal metadata").WithCause(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "begin save").WithCause(err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	wf := &Workflow{
		ID:          draft.ID,
		OwnerID:     ownerID,
		Description: draft.Description,
		Version:     version,
		Metadata:    meta,
		UpdatedAt:   now,
	}

	name, err := s.upsertWorkflowRow(ctx, tx, ownerID, draft, string(metaJSON), version, now, wf)
	if err != nil {
		return nil, err
	}
	wf.Name = name

	if err := replaceChildren(ctx, tx, wf.ID, draft.Nodes, draft.Edges); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "commit save").WithCause(err)
	}
	return wf, nil
}

// upsertWorkflowRow inserts or updates the workflow row, applying the bounded
// rename-and-retry loop on name conflicts. It returns the name the row ended
// up with and fills wf.ID and wf.CreatedAt.
func (s *LibSQLStore) upsertWorkflowRow(ctx context.Context, tx *sql.Tx, ownerID string, draft *WorkflowDraft, metaJSON, version string, now time.Time, wf *Workflow) (string, error) {
	name := draft.Name
	for attempt := 0; attempt <= maxNameRetries; attempt++ {
		if attempt > 0 {
			name = fmt.Sprintf("%s (%d)", draft.Name, attempt)
		}

		if draft.ID != "" {
			res, err := tx.ExecContext(ctx,
				`UPDATE workflows SET name = ?, description = ?, version = ?, metadata = ?, updated_at = ?
				 WHERE id = ? AND user_id = ?`,
				name, draft.Description, version, metaJSON, now, draft.ID, ownerID,
			)
			if isUniqueViolation(err) {
				continue
			}
			if err != nil {
				return "", schema.NewError(schema.ErrCodeStore, "update workflow").WithCause(err)
			}
			if err := checkRowsAffected(res, "workflow", draft.ID); err != nil {
				return "", err
			}
			var createdAt time.Time
			if err := tx.QueryRowContext(ctx, `SELECT created_at FROM workflows WHERE id = ?`, draft.ID).Scan(&createdAt); err != nil {
				return "", schema.NewError(schema.ErrCodeStore, "read workflow created_at").WithCause(err)
			}
			wf.CreatedAt = createdAt
			return name, nil
		}

		id := uuid.New().String()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO workflows (id, user_id, name, description, version, metadata, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ownerID, name, draft.Description, version, metaJSON, now, now,
		)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return "", schema.NewError(schema.ErrCodeStore, "insert workflow").WithCause(err)
		}
		wf.ID = id
		wf.CreatedAt = now
		return name, nil
	}
	return "", schema.NewErrorf(schema.ErrCodeConflict,
		"workflow name %q conflicts after %d rename attempts", draft.Name, maxNameRetries)
}

// replaceChildren deletes all existing node/edge rows for the workflow and
// bulk-inserts the draft's lists, preserving array order via sort_order.
func replaceChildren(ctx context.Context, tx *sql.Tx, workflowID string, nodes []*schema.Node, edges []*schema.Edge) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_nodes WHERE workflow_id = ?`, workflowID); err != nil {
		return schema.NewError(schema.ErrCodeStore, "delete workflow nodes").WithCause(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_edges WHERE workflow_id = ?`, workflowID); err != nil {
		return schema.NewError(schema.ErrCodeStore, "delete workflow edges").WithCause(err)
	}

	for i, n := range nodes {
		row, err := nodeToRow(workflowID, i, n)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workflow_nodes (id, workflow_id, node_id, node_type, subtype, provider, label, description, position_x, position_y, config, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), row.WorkflowID, row.NodeID, row.NodeType, row.Subtype, nullStr(row.Provider),
			row.Label, row.Description, row.PositionX, row.PositionY, row.ConfigJSON, row.SortOrder,
		); err != nil {
			return schema.NewError(schema.ErrCodeStore, "insert workflow node").WithNode(n.ID).WithCause(err)
		}
	}

	for i, e := range edges {
		row := edgeToRow(workflowID, i, e)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workflow_edges (id, workflow_id, edge_id, source_node_id, target_node_id, source_handle, target_handle, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), row.WorkflowID, row.EdgeID, row.SourceNodeID, row.TargetNodeID,
			nullStr(row.SourceHandle), nullStr(row.TargetHandle), row.SortOrder,
		); err != nil {
			return schema.NewError(schema.ErrCodeStore, "insert workflow edge").WithCause(err)
		}
	}
	return nil
}

func (s *LibSQLStore) GetWorkflow(ctx context.Context, ownerID, id string) (*WorkflowSnapshot, error) {
	wf, err := s.getWorkflowRow(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	nodes, err := s.loadNodes(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := s.loadEdges(ctx, id)
	if err != nil {
		return nil, err
	}

	return &WorkflowSnapshot{Workflow: wf, Nodes: nodes, Edges: edges}, nil
}

func (s *LibSQLStore) getWorkflowRow(ctx context.Context, ownerID, id string) (*Workflow, error) {
	wf := &Workflow{}
	var desc sql.NullString
	var metaJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, version, metadata, created_at, updated_at
		 FROM workflows WHERE id = ? AND user_id = ?`, id, ownerID,
	).Scan(&wf.ID, &wf.OwnerID, &wf.Name, &desc, &wf.Version, &metaJSON, &wf.CreatedAt, &wf.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("workflow", id)
	}
	if err != nil {
		return nil, err
	}
	wf.Description = desc.String
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &wf.Metadata)
	}
	return wf, nil
}

func (s *LibSQLStore) loadNodes(ctx context.Context, workflowID string) ([]*schema.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT workflow_id, node_id, node_type, subtype, provider, label, description, position_x, position_y, config, sort_order
		 FROM workflow_nodes WHERE workflow_id = ? ORDER BY sort_order ASC`, workflowID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*schema.Node
	for rows.Next() {
		r := &NodeRow{}
		var provider sql.NullString
		if err := rows.Scan(&r.WorkflowID, &r.NodeID, &r.NodeType, &r.Subtype, &provider,
			&r.Label, &r.Description, &r.PositionX, &r.PositionY, &r.ConfigJSON, &r.SortOrder); err != nil {
			return nil, err
		}
		r.Provider = provider.String
		n, err := rowToNode(r)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *LibSQLStore) loadEdges(ctx context.Context, workflowID string) ([]*schema.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT workflow_id, edge_id, source_node_id, target_node_id, source_handle, target_handle, sort_order
		 FROM workflow_edges WHERE workflow_id = ? ORDER BY sort_order ASC`, workflowID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*schema.Edge
	for rows.Next() {
		r := &EdgeRow{}
		var srcHandle, tgtHandle sql.NullString
		if err := rows.Scan(&r.WorkflowID, &r.EdgeID, &r.SourceNodeID, &r.TargetNodeID,
			&srcHandle, &tgtHandle, &r.SortOrder); err != nil {
			return nil, err
		}
		r.SourceHandle = srcHandle.String
		r.TargetHandle = tgtHandle.String
		edges = append(edges, rowToEdge(r))
	}
	return edges, rows.Err()
}

func (s *LibSQLStore) ListWorkflows(ctx context.Context, ownerID string, filter WorkflowFilter) ([]*Workflow, error) {
	where := []string{"user_id = ?"}
	args := []any{ownerID}

	if filter.NameContains != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+filter.NameContains+"%")
	}

	query := `SELECT id, user_id, name, description, version, metadata, created_at, updated_at FROM workflows WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*Workflow
	for rows.Next() {
		wf := &Workflow{}
		var desc sql.NullString
		var metaJSON string
		if err := rows.Scan(&wf.ID, &wf.OwnerID, &wf.Name, &desc, &wf.Version, &metaJSON, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, err
		}
		wf.Description = desc.String
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &wf.Metadata)
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

func (s *LibSQLStore) DeleteWorkflow(ctx context.Context, ownerID, id string) error {
	// Child rows go with the workflow via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "workflow", id)
}

// --- Chat sessions ---

func (s *LibSQLStore) CreateSession(ctx context.Context, sess *ChatSession) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := timeOrNow(sess.CreatedAt)
	sess.CreatedAt = now
	sess.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.OwnerID, sess.Title, now, now,
	)
	return err
}

func (s *LibSQLStore) GetSession(ctx context.Context, ownerID, id string) (*ChatSession, error) {
	sess := &ChatSession{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE id = ? AND user_id = ?`,
		id, ownerID,
	).Scan(&sess.ID, &sess.OwnerID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("chat_session", id)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *LibSQLStore) ListSessions(ctx context.Context, ownerID string, filter SessionFilter) ([]*ChatSession, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE user_id = ? ORDER BY updated_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*ChatSession
	for rows.Next() {
		sess := &ChatSession{}
		if err := rows.Scan(&sess.ID, &sess.OwnerID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *LibSQLStore) UpdateSessionTitle(ctx context.Context, ownerID, id, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		title, id, ownerID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "chat_session", id)
}

func (s *LibSQLStore) DeleteSession(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "chat_session", id)
}

// --- Messages ---

func (s *LibSQLStore) AppendMessage(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = timeOrNow(m.CreatedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "begin append message").WithCause(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, content, sender, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.Content, string(m.Sender), m.CreatedAt,
	); err != nil {
		return schema.NewError(schema.ErrCodeStore, "insert message").WithCause(err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, m.SessionID,
	); err != nil {
		return schema.NewError(schema.ErrCodeStore, "touch session").WithCause(err)
	}
	return tx.Commit()
}

func (s *LibSQLStore) ListMessages(ctx context.Context, sessionID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, content, sender, created_at FROM messages WHERE session_id = ? ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		var sender string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Content, &sender, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Sender = Sender(sender)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *LibSQLStore) CountMessages(ctx context.Context, sessionID string, sender Sender) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = ? AND sender = ?`, sessionID, string(sender),
	).Scan(&n)
	return n, err
}

// --- Retention ---

// PruneSessions deletes chat sessions (and their messages, via cascade) whose
// last activity is older than the cutoff. Returns the number of sessions removed.
func (s *LibSQLStore) PruneSessions(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE updated_at < ?`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Helpers ---

func storeNotFound(resource, id string) *schema.NavError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(resource, id)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
