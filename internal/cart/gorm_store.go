package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Keoroanthony/go-storefront/internal/models"
)

// GormStore keeps carts in the cart_sessions table.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{DB: conn}
}

func (s *GormStore) Load(ctx context.Context, sessionID string) (Raw, error) {
	var row models.CartSession
	err := s.DB.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Raw{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart session: %w", err)
	}
	return decodeRaw(row.Data), nil
}

func (s *GormStore) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	row := models.CartSession{
		SessionID: sessionID,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now(),
	}

	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart session: %w", err)
	}
	return nil
}

// Purge removes carts untouched since the cutoff.
func (s *GormStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("updated_at < ?", olderThan).Delete(&models.CartSession{})
	return res.RowsAffected, res.Error
}
