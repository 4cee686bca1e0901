package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ltiit/asterisk-api/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gorm.io/gorm"
)

// Fields is an insertion-ordered set of request key/value pairs. Order
// matters: var_metric values are assigned in the order the caller listed
// the keys, and that order is what ends up in the generated sip.conf.
// A key repeated in one request keeps its first position and last value.
type Fields = orderedmap.OrderedMap[string, string]

// NewFields returns an empty ordered field set ready for JSON binding.
func NewFields() *Fields { return orderedmap.New[string, string]() }

var (
	// ErrCategoryExists is the soft conflict signal from CreateCategory.
	ErrCategoryExists = errors.New("category already exists")
	// ErrCategoryNotFound is the soft miss signal from merge/delete/lookup.
	ErrCategoryNotFound = errors.New("category not found")
)

// MissingFieldError reports a required request field that was absent.
type MissingFieldError struct {
	Field string
	Hint  string
}

func (e *MissingFieldError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("missing required field %q (%s)", e.Field, e.Hint)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}

// requiredCreateFields must all be present in a create request. The hints
// mirror the values a typical LTIIT deployment uses.
var requiredCreateFields = []struct {
	name string
	hint string
}{
	{"context", "default ltiit"},
	{"host", "default dynamic"},
	{"type", "default friend"},
	{"category", "device name"},
}

// DeviceService owns all reads and writes of the ast_config table.
//
// cat_metric and var_metric are plain integer columns with no database
// sequence behind them, so every allocation is a read-max-then-insert.
// The mutex serializes those allocation paths across requests and each
// mutating operation runs inside one transaction, so two concurrent
// creates can never mint the same cat_metric and a merge either applies
// all of its per-field decisions or none of them.
type DeviceService struct {
	db       *gorm.DB
	filename string

	mu sync.Mutex
}

func NewDeviceService(db *gorm.DB, filename string) *DeviceService {
	return &DeviceService{db: db, filename: filename}
}

// CategorySummary is one entry of the device listing.
type CategorySummary struct {
	Category  string `json:"category"`
	CatMetric int    `json:"cat_metric"`
}

// DeviceVariable is one var_name/var_val line of a device section.
type DeviceVariable struct {
	ID      uint   `json:"id"`
	VarName string `json:"var_name"`
	VarVal  string `json:"var_val"`
}

// CreateResult reports what CreateCategory inserted.
type CreateResult struct {
	Category  string `json:"category"`
	CatMetric int    `json:"cat_metric"`
	Variables int    `json:"variables"`
}

// MergeResult reports what MergeCategory changed.
type MergeResult struct {
	Category string `json:"category"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
}

// ListCategories returns every distinct device category with its
// cat_metric, sorted by category.
func (s *DeviceService) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	var cats []CategorySummary
	err := s.db.WithContext(ctx).
		Model(&models.ConfigRow{}).
		Distinct("category", "cat_metric").
		Order("category").
		Find(&cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// GetByCatMetric returns the variable rows of one device section.
// Returns ErrCategoryNotFound when no row carries the given cat_metric.
func (s *DeviceService) GetByCatMetric(ctx context.Context, catMetric int) ([]DeviceVariable, error) {
	var vars []DeviceVariable
	err := s.db.WithContext(ctx).
		Model(&models.ConfigRow{}).
		Select("id", "var_name", "var_val").
		Where("cat_metric = ?", catMetric).
		Order("category").
		Find(&vars).Error
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, ErrCategoryNotFound
	}
	return vars, nil
}

// CreateCategory inserts a new device section as one batch of rows.
//
// The new cat_metric is the table-wide maximum plus one (0 for an empty
// table). Every field except "category" becomes a row, var_metric counting
// 0..k-1 in field order. If the category already exists nothing is written
// and ErrCategoryExists is returned.
func (s *DeviceService) CreateCategory(ctx context.Context, fields *Fields) (*CreateResult, error) {
	for _, req := range requiredCreateFields {
		if _, ok := fields.Get(req.name); !ok {
			return nil, &MissingFieldError{Field: req.name, Hint: req.hint}
		}
	}
	category, _ := fields.Get("category")

	s.mu.Lock()
	defer s.mu.Unlock()

	var result *CreateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ConfigRow{}).
			Where("category = ?", category).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryExists
		}

		var maxCatMetric int
		if err := tx.Model(&models.ConfigRow{}).
			Select("COALESCE(MAX(cat_metric), -1)").
			Scan(&maxCatMetric).Error; err != nil {
			return err
		}
		catMetric := maxCatMetric + 1

		rows := make([]models.ConfigRow, 0, fields.Len()-1)
		varMetric := 0
		for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == "category" {
				continue
			}
			rows = append(rows, models.ConfigRow{
				CatMetric: catMetric,
				VarMetric: varMetric,
				Filename:  s.filename,
				Category:  category,
				VarName:   pair.Key,
				VarVal:    pair.Value,
				Commented: 0,
			})
			varMetric++
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		result = &CreateResult{Category: category, CatMetric: catMetric, Variables: len(rows)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MergeCategory upserts the given fields into an existing device section.
//
// Fields whose var_name is already present have their var_val replaced in
// place; unseen var_names are appended with var_metric continuing past the
// section's current maximum. The whole merge commits atomically — a
// failure on any field rolls back every decision.
func (s *DeviceService) MergeCategory(ctx context.Context, fields *Fields) (*MergeResult, error) {
	category, ok := fields.Get("category")
	if !ok {
		return nil, &MissingFieldError{Field: "category", Hint: "device name"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result *MergeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ConfigRow
		if err := tx.Where("category = ?", category).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		catMetric := existing.CatMetric

		var maxVarMetric int
		if err := tx.Model(&models.ConfigRow{}).
			Select("COALESCE(MAX(var_metric), -1)").
			Where("category = ?", category).
			Scan(&maxVarMetric).Error; err != nil {
			return err
		}
		nextVarMetric := maxVarMetric + 1

		inserted, updated := 0, 0
		for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == "category" {
				continue
			}

			var row models.ConfigRow
			err := tx.Where("category = ? AND var_name = ?", category, pair.Key).
				First(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = models.ConfigRow{
					CatMetric: catMetric,
					VarMetric: nextVarMetric,
					Filename:  s.filename,
					Category:  category,
					VarName:   pair.Key,
					VarVal:    pair.Value,
					Commented: 0,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				nextVarMetric++
				inserted++
			case err != nil:
				return err
			default:
				if err := tx.Model(&row).Update("var_val", pair.Value).Error; err != nil {
					return err
				}
				updated++
			}
		}

		result = &MergeResult{Category: category, Inserted: inserted, Updated: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCategory removes every row of the named device section.
// Returns the number of rows removed, or ErrCategoryNotFound.
func (s *DeviceService) DeleteCategory(ctx context.Context, category string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ConfigRow{}).
			Where("category = ?", category).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCategoryNotFound
		}

		res := tx.Where("category = ?", category).Delete(&models.ConfigRow{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
