package corpusdb

import (
	"context"
	"database/sql"
	"fmt"

	cerrors "github.com/FocuswithJustin/ttconv/core/errors"
	"github.com/FocuswithJustin/ttconv/core/graph"
)

// txBuilder implements graph.Builder by inserting rows into one transaction.
type txBuilder struct {
	ctx     context.Context
	tx      *sql.Tx
	docID   int64
	textLen int
	kinds   []graph.NodeKind
	annos   map[graph.NodeID]int
	members map[graph.NodeID]int
}

var _ graph.Builder = (*txBuilder)(nil)

func newTxBuilder(ctx context.Context, tx *sql.Tx, name string) (*txBuilder, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO documents (name) VALUES (?)`, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b := &txBuilder{
		ctx:     ctx,
		tx:      tx,
		docID:   id,
		annos:   make(map[graph.NodeID]int),
		members: make(map[graph.NodeID]int),
	}
	if _, err := b.insertNode(graph.KindDocument, ""); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *txBuilder) SetText(text string) error {
	if _, err := b.tx.ExecContext(b.ctx, `UPDATE documents SET text = ? WHERE id = ?`, text, b.docID); err != nil {
		return err
	}
	b.textLen = len(text)
	return nil
}

func (b *txBuilder) CreateToken() (graph.NodeID, error) {
	return b.insertNode(graph.KindToken, "")
}

func (b *txBuilder) AddTextualRelation(token graph.NodeID, start, end int) error {
	if err := b.check(token, graph.KindToken); err != nil {
		return err
	}
	if start < 0 || end < start || end > b.textLen {
		return fmt.Errorf("%w: range [%d,%d) outside text of length %d",
			cerrors.ErrInvalidInput, start, end, b.textLen)
	}
	_, err := b.tx.ExecContext(b.ctx, `UPDATE nodes SET start_off = ?, end_off = ?, anchored = 1
		WHERE document_id = ? AND node_id = ?`, start, end, b.docID, int(token))
	return err
}

func (b *txBuilder) CreateSpan(name string) (graph.NodeID, error) {
	return b.insertNode(graph.KindSpan, name)
}

func (b *txBuilder) AddSpanningRelation(span, token graph.NodeID) error {
	if err := b.check(span, graph.KindSpan); err != nil {
		return err
	}
	if err := b.check(token, graph.KindToken); err != nil {
		return err
	}
	pos := b.members[span]
	b.members[span] = pos + 1
	_, err := b.tx.ExecContext(b.ctx, `INSERT INTO span_tokens (document_id, span_id, token_id, position)
		VALUES (?, ?, ?, ?)`, b.docID, int(span), int(token), pos)
	return err
}

func (b *txBuilder) AddAnnotation(node graph.NodeID, name, value string) error {
	if err := b.check(node, ""); err != nil {
		return err
	}
	pos := b.annos[node]
	b.annos[node] = pos + 1
	_, err := b.tx.ExecContext(b.ctx, `INSERT INTO annotations (document_id, node_id, position, name, value)
		VALUES (?, ?, ?, ?, ?)`, b.docID, int(node), pos, name, value)
	return err
}

func (b *txBuilder) insertNode(kind graph.NodeKind, name string) (graph.NodeID, error) {
	id := graph.NodeID(len(b.kinds))
	if _, err := b.tx.ExecContext(b.ctx, `INSERT INTO nodes (document_id, node_id, kind, name) VALUES (?, ?, ?, ?)`,
		b.docID, int(id), string(kind), name); err != nil {
		return 0, err
	}
	b.kinds = append(b.kinds, kind)
	return id, nil
}

func (b *txBuilder) check(id graph.NodeID, kind graph.NodeKind) error {
	if id < 0 || int(id) >= len(b.kinds) {
		return cerrors.NewNotFound("node", fmt.Sprint(id))
	}
	if kind != "" && b.kinds[id] != kind {
		return fmt.Errorf("%w: node %d is a %s, not a %s", cerrors.ErrInvalidInput, id, b.kinds[id], kind)
	}
	return nil
}
