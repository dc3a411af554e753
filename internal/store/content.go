package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/ourworld/internal/models"
)

const (
	// DefaultNoteAuthor は author 未指定のメモに使う署名です。
	DefaultNoteAuthor = "Someone in love"

	noteDateLayout = "Jan 02, 2006"
	startDateKey   = "first_met_date"
)

// Content は各コンテンツテーブルへの読み書きを提供します。
// 複数ステートメントからなる更新はトランザクションで原子的に行います。
type Content struct {
	db  *sql.DB
	now func() time.Time
}

func NewContent(db *sql.DB) *Content {
	return &Content{db: db, now: time.Now}
}

// Home は交際開始日と今後の予定（日付順）を返します。
func (r *Content) Home(ctx context.Context) (*models.Home, error) {
	home := &models.Home{UpcomingEvents: []models.UpcomingEvent{}}

	var start string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, startDateKey).Scan(&start)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to select start date: %w", err)
	default:
		home.StartDate = &start
	}

	rows, err := r.db.QueryContext(ctx, `SELECT date, label FROM upcoming_events ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting upcoming events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.UpcomingEvent
		if err := rows.Scan(&e.Date, &e.Label); err != nil {
			return nil, err
		}
		home.UpcomingEvents = append(home.UpcomingEvents, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return home, nil
}

// Posts はブログ記事を新しい順に返します。
func (r *Content) Posts(ctx context.Context) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title, body, date, author FROM blog_posts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.Title, &p.Body, &p.Date, &p.Author); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// Dates はデート候補とバケットリストを返します。
func (r *Content) Dates(ctx context.Context) (*models.Dates, error) {
	dates := &models.Dates{
		DateIdeas:   []models.DateIdea{},
		BucketItems: []models.BucketItem{},
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, title, status FROM date_ideas ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting date ideas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d models.DateIdea
		if err := rows.Scan(&d.ID, &d.Title, &d.Status); err != nil {
			return nil, err
		}
		dates.DateIdeas = append(dates.DateIdeas, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.db.QueryContext(ctx, `SELECT id, title, completed FROM bucket_items ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting bucket items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var b models.BucketItem
		if err := items.Scan(&b.ID, &b.Title, &b.Completed); err != nil {
			return nil, err
		}
		dates.BucketItems = append(dates.BucketItems, b)
	}
	if err := items.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// Special は記念日とカウントダウンを返します。
func (r *Content) Special(ctx context.Context) (*models.Special, error) {
	special := &models.Special{
		Milestones: []models.Milestone{},
		Countdowns: []models.Countdown{},
	}

	rows, err := r.db.QueryContext(ctx, `SELECT date, title, description FROM milestones ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting milestones: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(&m.Date, &m.Title, &m.Description); err != nil {
			return nil, err
		}
		special.Milestones = append(special.Milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cds, err := r.db.QueryContext(ctx, `SELECT id, title, date FROM countdowns ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting countdowns: %w", err)
	}
	defer cds.Close()
	for cds.Next() {
		var c models.Countdown
		if err := cds.Scan(&c.ID, &c.Title, &c.Date); err != nil {
			return nil, err
		}
		special.Countdowns = append(special.Countdowns, c)
	}
	if err := cds.Err(); err != nil {
		return nil, err
	}
	return special, nil
}

// ToggleBucketItem は completed を反転し、更新後の値を返します。
// 読み取りと更新は同一トランザクションで行います。
func (r *Content) ToggleBucketItem(ctx context.Context, id int64) (*models.BucketItem, error) {
	var item models.BucketItem
	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		err := tx.QueryRowContext(ctx, `SELECT id, title, completed FROM bucket_items WHERE id = ?`, id).
			Scan(&item.ID, &item.Title, &item.Completed)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to select bucket item: %w", err)
		}

		item.Completed = !item.Completed
		if _, err := tx.ExecContext(ctx, `UPDATE bucket_items SET completed = ? WHERE id = ?`, item.Completed, id); err != nil {
			return fmt.Errorf("failed to update bucket item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}
