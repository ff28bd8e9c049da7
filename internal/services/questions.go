package services

import (
	"context"
	"math/rand/v2"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/modules/progress/gate"
	"github.com/yungbote/prepstack-backend/internal/platform/apierr"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

// WindowSize is the number of items in one windowed page.
const WindowSize = 10

type QuestionView struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Prompt      string   `json:"prompt"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Tags        []string `json:"tags"`
	TopicID     int      `json:"topic_id"`
	Position    int      `json:"position_in_topic"`
	Current     bool     `json:"current,omitempty"`
	gate.ItemStatus
}

type SequentialPage struct {
	Category string        `json:"category"`
	Total    int           `json:"total"`
	Item     *QuestionView `json:"item"`
	NextID   int           `json:"next_id"`
	HasNext  bool          `json:"has_next"`
}

type WindowPage struct {
	Category      string          `json:"category"`
	Total         int             `json:"total"`
	Start         int             `json:"start"`
	Items         []*QuestionView `json:"items"`
	HasPrevious   bool            `json:"has_previous"`
	HasNext       bool            `json:"has_next"`
	PreviousStart int             `json:"previous_start"`
	NextStart     int             `json:"next_start"`
}

type RandomPage struct {
	Category     string        `json:"category"`
	Total        int           `json:"total"`
	Item         *QuestionView `json:"item"`
	NextRandomID int           `json:"next_random_id"`
}

type QuestionService interface {
	Get(ctx context.Context, category string, id int) (*SequentialPage, error)
	// Window returns WindowSize items from start; start 0 means "start at id".
	Window(ctx context.Context, category string, start, id int) (*WindowPage, error)
	// Random picks a uniform id; id > 0 fetches that item and still suggests
	// a fresh random id.
	Random(ctx context.Context, category string, id int) (*RandomPage, error)
}

type questionService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	itemRepo repos.ItemRepo
	intn     func(n int) int
}

func NewQuestionService(log *logger.Logger, userRepo repos.UserRepo, itemRepo repos.ItemRepo) QuestionService {
	return newQuestionService(log, userRepo, itemRepo, rand.IntN)
}

func newQuestionService(log *logger.Logger, userRepo repos.UserRepo, itemRepo repos.ItemRepo, intn func(int) int) *questionService {
	return &questionService{
		log:      log.With("service", "QuestionService"),
		userRepo: userRepo,
		itemRepo: itemRepo,
		intn:     intn,
	}
}

// scope is what every pager call needs: the category, the caller's attempted
// count for gate flags, and the number of items in the set.
type scope struct {
	cat       content.Category
	attempted int
	total     int
}

func (qs *questionService) scope(ctx context.Context, category string) (*scope, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	cat, ok := content.Lookup(category)
	if !ok {
		return nil, invalid("invalid_category", ErrInvalidCategory, "%q", category)
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := qs.userRepo.Resolve(dbc, id.UserID, id.Email)
	if err != nil {
		qs.log.Error("load profile failed", "error", err)
		return nil, storeFailed("load questions")
	}
	if u == nil {
		return nil, profileNotFound()
	}
	total, err := qs.itemRepo.Count(dbc, cat)
	if err != nil {
		qs.log.Error("count items failed", "error", err, "category", cat.Key)
		return nil, storeFailed("load questions")
	}
	attempted, _ := u.Counter(cat.CounterColumn)
	return &scope{cat: cat, attempted: attempted, total: int(total)}, nil
}

func (qs *questionService) Get(ctx context.Context, category string, id int) (*SequentialPage, error) {
	sc, err := qs.scope(ctx, category)
	if err != nil {
		return nil, err
	}
	item, err := qs.fetch(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	next := id + 1
	return &SequentialPage{
		Category: sc.cat.Key,
		Total:    sc.total,
		Item:     item,
		NextID:   next,
		HasNext:  next <= sc.total,
	}, nil
}

func (qs *questionService) Window(ctx context.Context, category string, start, id int) (*WindowPage, error) {
	if start < 0 || id < 0 {
		return nil, invalid("invalid_pagination", ErrInvalidPagination, "start and id must be positive")
	}
	if start == 0 {
		start = max(id, 1)
	}
	sc, err := qs.scope(ctx, category)
	if err != nil {
		return nil, err
	}
	rows, err := qs.itemRepo.ListRange(dbctx.Context{Ctx: ctx}, sc.cat, start, start+WindowSize-1)
	if err != nil {
		qs.log.Error("list window failed", "error", err, "category", sc.cat.Key)
		return nil, storeFailed("load questions")
	}
	if len(rows) == 0 {
		return nil, apierr.NotFound("question_not_found", ErrQuestionNotFound)
	}
	items := make([]*QuestionView, 0, len(rows))
	for _, row := range rows {
		v := questionView(row, sc)
		v.Current = row.ID == id
		items = append(items, v)
	}
	return &WindowPage{
		Category:      sc.cat.Key,
		Total:         sc.total,
		Start:         start,
		Items:         items,
		HasPrevious:   start > 1,
		HasNext:       start+WindowSize <= sc.total,
		PreviousStart: max(1, start-WindowSize),
		NextStart:     start + WindowSize,
	}, nil
}

func (qs *questionService) Random(ctx context.Context, category string, id int) (*RandomPage, error) {
	if id < 0 {
		return nil, invalid("invalid_request", ErrInvalidRequest, "id must be positive")
	}
	sc, err := qs.scope(ctx, category)
	if err != nil {
		return nil, err
	}
	if sc.total == 0 {
		return nil, apierr.NotFound("question_not_found", ErrQuestionNotFound)
	}
	if id == 0 {
		id = qs.pick(sc.total)
	}
	item, err := qs.fetch(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	return &RandomPage{
		Category:     sc.cat.Key,
		Total:        sc.total,
		Item:         item,
		NextRandomID: qs.pick(sc.total),
	}, nil
}

// pick returns a uniform id in [1, total].
func (qs *questionService) pick(total int) int {
	return qs.intn(total) + 1
}

func (qs *questionService) fetch(ctx context.Context, sc *scope, id int) (*QuestionView, error) {
	if id < 1 {
		return nil, apierr.NotFound("question_not_found", ErrQuestionNotFound)
	}
	row, err := qs.itemRepo.GetByID(dbctx.Context{Ctx: ctx}, sc.cat, id)
	if err != nil {
		qs.log.Error("get item failed", "error", err, "category", sc.cat.Key, "id", id)
		return nil, storeFailed("load question")
	}
	if row == nil {
		return nil, apierr.NotFound("question_not_found", ErrQuestionNotFound)
	}
	v := questionView(row, sc)
	v.Current = true
	return v, nil
}

// questionView withholds answer and explanation from locked items.
func questionView(it *content.Item, sc *scope) *QuestionView {
	status := gate.Status(it.ID, sc.attempted)
	v := &QuestionView{
		ID:         it.ID,
		Title:      it.Title,
		Prompt:     it.Prompt,
		Difficulty: it.Difficulty,
		Tags:       []string(it.Tags),
		TopicID:    gate.TopicOf(it.ID, sc.cat.TopicSize),
		Position:   gate.PositionInTopic(it.ID, sc.cat.TopicSize),
		ItemStatus: status,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if !status.Locked {
		v.Answer = it.Answer
		v.Explanation = it.Explanation
	}
	return v
}
