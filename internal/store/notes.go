package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/ourworld/internal/models"
)

// Notes はメモを新しい順に返します。
func (r *Content) Notes(ctx context.Context) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, author, message, created_at FROM notes ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Author, &n.Message, &n.Date); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote はメモを追加して作成したレコードを返します。
// author が空白のみの場合は DefaultNoteAuthor を使います。message の検証は呼び出し側で行います。
func (r *Content) CreateNote(ctx context.Context, author, message string) (*models.Note, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultNoteAuthor
	}
	note := &models.Note{
		Author:  author,
		Message: strings.TrimSpace(message),
		Date:    r.now().Format(noteDateLayout),
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (author, message, created_at) VALUES (?, ?, ?)`,
		note.Author, note.Message, note.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	note.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return note, nil
}

// DeleteNote はメモを削除します。存在しなければ ErrNotFound を返します。
func (r *Content) DeleteNote(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
