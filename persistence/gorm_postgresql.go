// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/xoserver/models"
)

// GormPostgreSQL implements Database on top of GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

var _ Database = (*GormPostgreSQL)(nil)

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.GormUser{}, &models.GormFriendship{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (g *GormPostgreSQL) CreateUser(user *models.GormUser) error {
	err := g.db.Create(user).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (g *GormPostgreSQL) GetUserByID(id int64) (*models.GormUser, error) {
	var user models.GormUser
	if err := g.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (g *GormPostgreSQL) GetUserByUsername(username string) (*models.GormUser, error) {
	var user models.GormUser
	if err := g.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (g *GormPostgreSQL) UpdateUserProfile(id int64, profile map[string]interface{}) error {
	result := g.db.Model(&models.GormUser{}).Where("id = ?", id).Updates(profile)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *GormPostgreSQL) CreateFriendship(senderID, receiverID int64) error {
	edge := models.GormFriendship{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendshipPending,
	}
	err := g.db.Create(&edge).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (g *GormPostgreSQL) UpdateFriendshipStatus(senderID, receiverID int64, status string) error {
	result := g.db.Model(&models.GormFriendship{}).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *GormPostgreSQL) PendingFriendships(receiverID int64) ([]models.GormFriendship, error) {
	var edges []models.GormFriendship
	err := g.db.
		Where("receiver_id = ? AND status = ?", receiverID, models.FriendshipPending).
		Find(&edges).Error
	return edges, err
}

func (g *GormPostgreSQL) AcceptedFriendships(userID int64) ([]models.GormFriendship, error) {
	var edges []models.GormFriendship
	err := g.db.
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?",
			userID, userID, models.FriendshipAccepted).
		Find(&edges).Error
	return edges, err
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
