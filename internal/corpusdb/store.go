// Package corpusdb persists documents in a SQLite database as stand-off
// annotation graphs.
//
// Documents are written through graph.Export into a transaction and read
// back into a graph.Memory before graph.Import rebuilds the model. The
// SQLite driver is whatever core/sqlite was built with.
package corpusdb

import (
	"context"
	"database/sql"
	"fmt"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/graph"
	"github.com/FocuswithJustin/ttconv/core/model"
	"github.com/FocuswithJustin/ttconv/core/sqlite"
)

// Store is an open corpus database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, cerrors.NewIO("open", path, err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing database without creating the schema.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, cerrors.NewIO("open", path, err)
	}
	s := &Store{db: db, path: path}
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		db.Close()
		return nil, cerrors.NewIO("open", path, err)
	}
	if version != schemaVersion {
		db.Close()
		return nil, cerrors.NewParse("corpusdb", path, fmt.Sprintf("schema version %d, want %d", version, schemaVersion))
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return cerrors.NewIO("create schema", s.path, err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return cerrors.NewIO("create schema", s.path, err)
	}
	return nil
}

// Save writes doc, replacing any stored document with the same name.
func (s *Store) Save(ctx context.Context, doc *model.Document, opts graph.Options) (err error) {
	if doc == nil {
		return cerrors.NewConfig("document", "no document given")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewIO("begin", s.path, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, doc.Name()); err != nil {
		return cerrors.NewIO("delete", s.path, err)
	}
	b, err := newTxBuilder(ctx, tx, doc.Name())
	if err != nil {
		return cerrors.NewIO("insert", s.path, err)
	}
	if err = graph.Export(doc, b, opts); err != nil {
		return cerrors.Wrapf(err, "save %s", doc.Name())
	}
	if err = tx.Commit(); err != nil {
		return cerrors.NewIO("commit", s.path, err)
	}
	return nil
}

// List returns the stored document names in insertion order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY id`)
	if err != nil {
		return nil, cerrors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, cerrors.NewIO("scan", s.path, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewIO("query", s.path, err)
	}
	return names, nil
}

// Delete removes the named document. Deleting a missing document is a
// NotFoundError.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return cerrors.NewIO("delete", s.path, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cerrors.NewNotFound("document", name)
	}
	return nil
}

// LoadGraph reads the named document as a graph.
func (s *Store) LoadGraph(ctx context.Context, name string) (*graph.Memory, error) {
	var (
		id   int64
		text string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, text FROM documents WHERE name = ?`, name).Scan(&id, &text)
	if err == sql.ErrNoRows {
		return nil, cerrors.NewNotFound("document", name)
	}
	if err != nil {
		return nil, cerrors.NewIO("query", s.path, err)
	}

	m := graph.NewMemory(name)
	if err := m.SetText(text); err != nil {
		return nil, err
	}
	if err := s.loadNodes(ctx, id, m); err != nil {
		return nil, err
	}
	if err := s.loadSpanTokens(ctx, id, m); err != nil {
		return nil, err
	}
	if err := s.loadAnnotations(ctx, id, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads the named document.
func (s *Store) Load(ctx context.Context, name string, opts graph.Options) (*model.Document, error) {
	m, err := s.LoadGraph(ctx, name)
	if err != nil {
		return nil, err
	}
	return graph.Import(m, opts)
}

// LoadAll reads every stored document in insertion order.
func (s *Store) LoadAll(ctx context.Context, opts graph.Options) ([]*model.Document, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*model.Document, 0, len(names))
	for _, name := range names {
		doc, err := s.Load(ctx, name, opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) loadNodes(ctx context.Context, docID int64, m *graph.Memory) error {
	rows, err := s.db.QueryContext(ctx, `SELECT node_id, kind, name, start_off, end_off, anchored
		FROM nodes WHERE document_id = ? AND node_id > 0 ORDER BY node_id`, docID)
	if err != nil {
		return cerrors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stored     graph.NodeID
			kind, name string
			start, end int
			anchored   bool
		)
		if err := rows.Scan(&stored, &kind, &name, &start, &end, &anchored); err != nil {
			return cerrors.NewIO("scan", s.path, err)
		}
		var id graph.NodeID
		switch graph.NodeKind(kind) {
		case graph.KindToken:
			id, err = m.CreateToken()
		case graph.KindSpan:
			id, err = m.CreateSpan(name)
		default:
			return cerrors.NewParse("corpusdb", s.path, fmt.Sprintf("node %d has unknown kind %q", stored, kind))
		}
		if err != nil {
			return err
		}
		if id != stored {
			return cerrors.NewParse("corpusdb", s.path, fmt.Sprintf("node ids are not consecutive at %d", stored))
		}
		if anchored {
			if err := m.AddTextualRelation(id, start, end); err != nil {
				return cerrors.Wrapf(err, "node %d", stored)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return cerrors.NewIO("query", s.path, err)
	}
	return nil
}

func (s *Store) loadSpanTokens(ctx context.Context, docID int64, m *graph.Memory) error {
	rows, err := s.db.QueryContext(ctx, `SELECT span_id, token_id FROM span_tokens
		WHERE document_id = ? ORDER BY span_id, position`, docID)
	if err != nil {
		return cerrors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var span, token graph.NodeID
		if err := rows.Scan(&span, &token); err != nil {
			return cerrors.NewIO("scan", s.path, err)
		}
		if err := m.AddSpanningRelation(span, token); err != nil {
			return cerrors.Wrapf(err, "span %d", span)
		}
	}
	if err := rows.Err(); err != nil {
		return cerrors.NewIO("query", s.path, err)
	}
	return nil
}

func (s *Store) loadAnnotations(ctx context.Context, docID int64, m *graph.Memory) error {
	rows, err := s.db.QueryContext(ctx, `SELECT node_id, name, value FROM annotations
		WHERE document_id = ? ORDER BY node_id, position`, docID)
	if err != nil {
		return cerrors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			node        graph.NodeID
			name, value string
		)
		if err := rows.Scan(&node, &name, &value); err != nil {
			return cerrors.NewIO("scan", s.path, err)
		}
		if err := m.AddAnnotation(node, name, value); err != nil {
			return cerrors.Wrapf(err, "annotation %s", name)
		}
	}
	if err := rows.Err(); err != nil {
		return cerrors.NewIO("query", s.path, err)
	}
	return nil
}

// Match is one token found by FindTokens.
type Match struct {
	Document string
	Token    graph.NodeID
	Text     string
}

// FindTokens returns the tokens annotated name=value across all documents,
// ordered by document and text offset.
func (s *Store) FindTokens(ctx context.Context, name, value string) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT d.name, n.node_id, CAST(substr(CAST(d.text AS BLOB), n.start_off + 1, n.end_off - n.start_off) AS TEXT)
		FROM annotations a
		JOIN nodes n ON n.document_id = a.document_id AND n.node_id = a.node_id
		JOIN documents d ON d.id = a.document_id
		WHERE a.name = ? AND a.value = ? AND n.kind = ?
		ORDER BY d.id, n.start_off, n.node_id`, name, value, string(graph.KindToken))
	if err != nil {
		return nil, cerrors.NewIO("query", s.path, err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Document, &m.Token, &m.Text); err != nil {
			return nil, cerrors.NewIO("scan", s.path, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewIO("query", s.path, err)
	}
	return out, nil
}
