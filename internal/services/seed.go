package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/yungbote/prepstack-backend/internal/data/repos"
	"github.com/yungbote/prepstack-backend/internal/data/tx"
	"github.com/yungbote/prepstack-backend/internal/domain/content"
	"github.com/yungbote/prepstack-backend/internal/platform/dbctx"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

var ErrInvalidBundle = errors.New("invalid seed bundle")

type SeedItem struct {
	ID          int      `yaml:"id" validate:"gte=1"`
	Title       string   `yaml:"title" validate:"required"`
	Prompt      string   `yaml:"prompt" validate:"required"`
	Answer      string   `yaml:"answer"`
	Explanation string   `yaml:"explanation"`
	Difficulty  string   `yaml:"difficulty"`
	Tags        []string `yaml:"tags"`
}

type SeedBundle struct {
	Category string     `yaml:"category" validate:"required"`
	Items    []SeedItem `yaml:"items" validate:"required,min=1,dive"`
}

type SeedReport struct {
	Category string `json:"category"`
	Upserted int    `json:"upserted"`
	Deleted  int64  `json:"deleted"`
	Total    int64  `json:"total"`
}

type SeedService interface {
	LoadFile(path string) ([]SeedBundle, error)
	Apply(ctx context.Context, bundle SeedBundle, replace bool) (*SeedReport, error)
}

type seedService struct {
	log      *logger.Logger
	runner   tx.TxRunner
	itemRepo repos.ItemRepo
}

func NewSeedService(log *logger.Logger, runner tx.TxRunner, itemRepo repos.ItemRepo) SeedService {
	return &seedService{log: log.With("service", "SeedService"), runner: runner, itemRepo: itemRepo}
}

func (ss *seedService) LoadFile(path string) ([]SeedBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBundles(f)
}

// DecodeBundles reads one or more YAML documents, each a bundle, and
// validates them.
func DecodeBundles(r io.Reader) ([]SeedBundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var out []SeedBundle
	for {
		var b SeedBundle
		err := dec.Decode(&b)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
		}
		if err := ValidateBundle(b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no documents", ErrInvalidBundle)
	}
	return out, nil
}

// ValidateBundle requires a known category and a dense run of positive,
// unique ids with a title and prompt on every item.
func ValidateBundle(b SeedBundle) error {
	trimmed := SeedBundle{Category: strings.TrimSpace(b.Category), Items: make([]SeedItem, len(b.Items))}
	for i, it := range b.Items {
		it.Title = strings.TrimSpace(it.Title)
		it.Prompt = strings.TrimSpace(it.Prompt)
		trimmed.Items[i] = it
	}
	if err := validate.Struct(trimmed); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBundle, fieldErrorMessage(err))
	}
	if _, ok := content.Lookup(b.Category); !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidBundle, b.Category)
	}
	ids := make([]int, 0, len(b.Items))
	seen := make(map[int]struct{}, len(b.Items))
	for _, it := range b.Items {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidBundle, it.ID)
		}
		seen[it.ID] = struct{}{}
		ids = append(ids, it.ID)
	}
	sort.Ints(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[i-1]+1 {
			return fmt.Errorf("%w: gap between ids %d and %d", ErrInvalidBundle, ids[i-1], ids[i])
		}
	}
	return nil
}

// Apply upserts the bundle in one transaction. Without replace the bundle
// must start at or before the first free id so the table stays dense.
func (ss *seedService) Apply(ctx context.Context, bundle SeedBundle, replace bool) (*SeedReport, error) {
	if err := ValidateBundle(bundle); err != nil {
		return nil, err
	}
	cat, _ := content.Lookup(bundle.Category)
	items := make([]*content.Item, 0, len(bundle.Items))
	minID := bundle.Items[0].ID
	for _, it := range bundle.Items {
		minID = min(minID, it.ID)
		items = append(items, &content.Item{
			ID:          it.ID,
			Title:       strings.TrimSpace(it.Title),
			Prompt:      it.Prompt,
			Answer:      it.Answer,
			Explanation: it.Explanation,
			Difficulty:  strings.TrimSpace(it.Difficulty),
			Tags:        datatypes.JSONSlice[string](it.Tags),
		})
	}

	report := &SeedReport{Category: cat.Key, Upserted: len(items)}
	err := ss.runner.InTx(ctx, func(dbc dbctx.Context) error {
		if replace {
			n, err := ss.itemRepo.DeleteAll(dbc, cat)
			if err != nil {
				return err
			}
			report.Deleted = n
		}
		existing, err := ss.itemRepo.Count(dbc, cat)
		if err != nil {
			return err
		}
		if int64(minID) > existing+1 {
			return fmt.Errorf("%w: %s holds %d items, bundle starts at %d", ErrInvalidBundle, cat.Key, existing, minID)
		}
		if err := ss.itemRepo.Upsert(dbc, cat, items); err != nil {
			return err
		}
		report.Total, err = ss.itemRepo.Count(dbc, cat)
		return err
	})
	if err != nil {
		return nil, err
	}
	ss.log.Info("seeded content", "category", cat.Key, "upserted", report.Upserted, "deleted", report.Deleted, "total", report.Total)
	return report, nil
}
