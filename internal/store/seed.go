package store

import (
	"context"
	"database/sql"
	"fmt"
)

type seedQuizQuestion struct {
	question string
	options  []seedQuizOption
}

type seedQuizOption struct {
	label    string
	isAnswer bool
}

var (
	seedPosts = [][]any{
		{"The Day We Met", "I still remember the way you smiled. It felt like the world paused just for us.", "Feb 14, 2021", "Him"},
		{"Our Rainy Adventure", "Dancing in the rain and getting completely soaked was the best idea ever.", "Jul 03, 2022", "Her"},
		{"Weekend Getaway", "We found our cozy cabin escape and made it our own little universe for a weekend.", "Nov 19, 2023", "Him"},
	}

	seedDateIdeas = [][]any{
		{"Sunset Picnic by the Lake", "Planned"},
		{"Pottery Class Together", "Completed"},
		{"DIY Pizza Night", "Want to Try"},
		{"Stargazing Road Trip", "Planned"},
		{"Bookstore Treasure Hunt", "Completed"},
	}

	seedBucketItems = [][]any{
		{"Visit a foreign country together", false},
		{"Adopt a tiny plant family", true},
		{"Write and record a song", false},
		{"Wake up for a 5am sunrise date", false},
		{"Learn a new language phrase each week", true},
	}

	seedMilestones = [][]any{
		{"Feb 14, 2021", "We met 💫", "The start of everything amazing."},
		{"Mar 01, 2021", "First Official Date", "Coffee, laughs, and sparks."},
		{"Dec 25, 2021", "First Holiday Together", "Matching pajamas and cozy cuddles."},
		{"Apr 12, 2023", "Moved In Together", "Our shared safe place was born."},
	}

	seedCountdowns = [][]any{
		{"anniversary", "Next Anniversary", "2025-02-14T00:00:00"},
		{"herBirthday", "Her Birthday", "2024-11-05T00:00:00"},
		{"hisBirthday", "His Birthday", "2025-04-22T00:00:00"},
	}

	seedWheelIdeas = [][]any{
		{"Cook a new recipe together"},
		{"Watch the stars with a cozy blanket"},
		{"Karaoke night at home"},
		{"Write each other love letters"},
		{"Explore a new coffee shop"},
		{"Go for a midnight walk"},
	}

	seedQuiz = []seedQuizQuestion{
		{question: "Where did we first meet?", options: []seedQuizOption{
			{label: "At a bookstore"},
			{label: "At a coffee shop", isAnswer: true},
			{label: "At a concert"},
		}},
		{question: "Our go-to comfort movie is…", options: []seedQuizOption{
			{label: "The Notebook"},
			{label: "Your Name"},
			{label: "La La Land", isAnswer: true},
		}},
		{question: "Who said “I love you” first?", options: []seedQuizOption{
			{label: "Him", isAnswer: true},
			{label: "Her"},
			{label: "We said it at the same time"},
		}},
	}

	seedPollOptions = [][]any{
		{"Romantic picnic", 0},
		{"Art museum date", 0},
		{"Weekend road trip", 0},
	}

	seedConfig = [][]any{
		{startDateKey, "2021-02-14T00:00:00"},
	}

	seedUpcomingEvents = [][]any{
		{"2024-11-05", "Her birthday breakfast in bed"},
		{"2024-12-12", "Winter wonderland photo walk"},
		{"2025-02-14", "Our next anniversary escape"},
		{"2025-04-22", "His birthday adventure day"},
	}
)

type seedTable struct {
	table  string
	insert string
	rows   [][]any
}

var seedTables = []seedTable{
	{"blog_posts", `INSERT INTO blog_posts (title, body, date, author) VALUES (?, ?, ?, ?)`, seedPosts},
	{"date_ideas", `INSERT INTO date_ideas (title, status) VALUES (?, ?)`, seedDateIdeas},
	{"bucket_items", `INSERT INTO bucket_items (title, completed) VALUES (?, ?)`, seedBucketItems},
	{"milestones", `INSERT INTO milestones (date, title, description) VALUES (?, ?, ?)`, seedMilestones},
	{"countdowns", `INSERT INTO countdowns (id, title, date) VALUES (?, ?, ?)`, seedCountdowns},
	{"wheel_ideas", `INSERT INTO wheel_ideas (idea) VALUES (?)`, seedWheelIdeas},
	{"poll_options", `INSERT INTO poll_options (label, votes) VALUES (?, ?)`, seedPollOptions},
	{"config", `INSERT INTO config (key, value) VALUES (?, ?)`, seedConfig},
	{"upcoming_events", `INSERT INTO upcoming_events (date, label) VALUES (?, ?)`, seedUpcomingEvents},
}

// Seed は空のテーブルにだけ初期データを投入します。何度実行しても行は重複しません。
// 認証情報の投入は auth パッケージの Bootstrap が担います。
func Seed(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		for _, st := range seedTables {
			empty, err := tableEmpty(ctx, tx, st.table)
			if err != nil {
				return err
			}
			if !empty {
				continue
			}
			for _, row := range st.rows {
				if _, err := tx.ExecContext(ctx, st.insert, row...); err != nil {
					return fmt.Errorf("failed to seed %s: %w", st.table, err)
				}
			}
		}
		return seedQuizTables(ctx, tx)
	})
}

func seedQuizTables(ctx context.Context, tx DBTX) error {
	empty, err := tableEmpty(ctx, tx, "quiz_questions")
	if err != nil || !empty {
		return err
	}

	for _, q := range seedQuiz {
		res, err := tx.ExecContext(ctx, `INSERT INTO quiz_questions (question) VALUES (?)`, q.question)
		if err != nil {
			return fmt.Errorf("failed to seed quiz_questions: %w", err)
		}
		questionID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get inserted id: %w", err)
		}
		for _, o := range q.options {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quiz_options (question_id, label, is_answer) VALUES (?, ?, ?)`,
				questionID, o.label, o.isAnswer); err != nil {
				return fmt.Errorf("failed to seed quiz_options: %w", err)
			}
		}
	}
	return nil
}

// table は seedTables の固定値のみを受け取ります。
func tableEmpty(ctx context.Context, db DBTX, table string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n == 0, nil
}
