// Package models はストアと API の間で受け渡すレコード型を定義します。
// JSON タグはそのままレスポンスの形になります。
package models

// Credential は唯一のログイン用アカウントです。
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string // PBKDF2 の導出結果（hex）
	Salt         string // hex
}

// UpcomingEvent はホーム画面に表示する予定です。
type UpcomingEvent struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// Home は /api/home のレスポンスです。StartDate は未設定なら null になります。
type Home struct {
	StartDate      *string         `json:"startDate"`
	UpcomingEvents []UpcomingEvent `json:"upcomingEvents"`
}

// Post はブログ記事です。
type Post struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Date   string `json:"date"`
	Author string `json:"author"`
}

// DateIdea はデートの候補です。
type DateIdea struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// BucketItem はバケットリストの項目です。
type BucketItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Dates は /api/dates のレスポンスです。
type Dates struct {
	DateIdeas   []DateIdea   `json:"dateIdeas"`
	BucketItems []BucketItem `json:"bucketItems"`
}

// Milestone は記念日の記録です。
type Milestone struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Countdown はカウントダウン対象の日付です。
type Countdown struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Special は /api/special のレスポンスです。
type Special struct {
	Milestones []Milestone `json:"milestones"`
	Countdowns []Countdown `json:"countdowns"`
}

// Note は伝言板のメモです。Date は作成日（"Jan 02, 2006" 形式）です。
type Note struct {
	ID      int64  `json:"id"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// WheelIdea はルーレットの項目です。
type WheelIdea struct {
	ID   int64  `json:"id"`
	Idea string `json:"idea"`
}

// QuizOption はクイズの選択肢です。
type QuizOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// QuizQuestion はクイズの設問です。AnswerID は正解がなければ null です。
type QuizQuestion struct {
	ID       int64        `json:"id"`
	Question string       `json:"question"`
	Options  []QuizOption `json:"options"`
	AnswerID *int64       `json:"answerId"`
}

// PollOption は投票の選択肢です。
type PollOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Votes int64  `json:"votes"`
}

// Fun は /api/fun のレスポンスです。
type Fun struct {
	WheelIdeas    []WheelIdea    `json:"wheelIdeas"`
	QuizQuestions []QuizQuestion `json:"quizQuestions"`
	PollOptions   []PollOption   `json:"pollOptions"`
}
