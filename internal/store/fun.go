package store

import (
	"context"
	"fmt"

	"github.com/yourusername/ourworld/internal/models"
)

// Fun はルーレット、クイズ、投票の内容をまとめて返します。
func (r *Content) Fun(ctx context.Context) (*models.Fun, error) {
	wheel, err := r.wheelIdeas(ctx)
	if err != nil {
		return nil, err
	}
	quiz, err := r.quizQuestions(ctx)
	if err != nil {
		return nil, err
	}
	poll, err := listPollOptions(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return &models.Fun{
		WheelIdeas:    wheel,
		QuizQuestions: quiz,
		PollOptions:   poll,
	}, nil
}

// VotePoll は選択肢の票数を1増やし、更新後の全選択肢を返します。
func (r *Content) VotePoll(ctx context.Context, optionID int64) ([]models.PollOption, error) {
	var options []models.PollOption
	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx, `UPDATE poll_options SET votes = votes + 1 WHERE id = ?`, optionID)
		if err != nil {
			return fmt.Errorf("failed to update poll option: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		options, err = listPollOptions(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

func (r *Content) wheelIdeas(ctx context.Context) ([]models.WheelIdea, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, idea FROM wheel_ideas ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting wheel ideas: %w", err)
	}
	defer rows.Close()

	ideas := []models.WheelIdea{}
	for rows.Next() {
		var w models.WheelIdea
		if err := rows.Scan(&w.ID, &w.Idea); err != nil {
			return nil, err
		}
		ideas = append(ideas, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ideas, nil
}

func (r *Content) quizQuestions(ctx context.Context) ([]models.QuizQuestion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, question FROM quiz_questions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting quiz questions: %w", err)
	}
	defer rows.Close()

	questions := []models.QuizQuestion{}
	index := map[int64]int{}
	for rows.Next() {
		q := models.QuizQuestion{Options: []models.QuizOption{}}
		if err := rows.Scan(&q.ID, &q.Question); err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	opts, err := r.db.QueryContext(ctx,
		`SELECT id, question_id, label, is_answer FROM quiz_options ORDER BY question_id ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting quiz options: %w", err)
	}
	defer opts.Close()

	for opts.Next() {
		var (
			o          models.QuizOption
			questionID int64
			isAnswer   bool
		)
		if err := opts.Scan(&o.ID, &questionID, &o.Label, &isAnswer); err != nil {
			return nil, err
		}
		i, ok := index[questionID]
		if !ok {
			continue
		}
		q := &questions[i]
		q.Options = append(q.Options, o)
		if isAnswer && q.AnswerID == nil {
			id := o.ID
			q.AnswerID = &id
		}
	}
	if err := opts.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func listPollOptions(ctx context.Context, db DBTX) ([]models.PollOption, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, label, votes FROM poll_options ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error selecting poll options: %w", err)
	}
	defer rows.Close()

	options := []models.PollOption{}
	for rows.Next() {
		var p models.PollOption
		if err := rows.Scan(&p.ID, &p.Label, &p.Votes); err != nil {
			return nil, err
		}
		options = append(options, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return options, nil
}
