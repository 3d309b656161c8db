package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tamaqBack/internal/models"
	"tamaqBack/internal/repositories"
	"tamaqBack/utils"

	"github.com/google/uuid"
)

type MenuService struct {
	Menu   *repositories.MenuRepository
	Stores *repositories.StoreRepository
	Logger Logger
}

func (s *MenuService) CreateMenuItem(ctx context.Context, ownerID int64, item models.MenuItem) (models.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return models.MenuItem{}, fmt.Errorf("create menu item: name required")
	}
	if item.Price < 0 || item.PrepMinutes < 0 {
		return models.MenuItem{}, fmt.Errorf("create menu item: negative price or prep time")
	}
	if err := s.checkOwnership(ctx, ownerID, item.StoreID); err != nil {
		return models.MenuItem{}, err
	}
	return s.Menu.CreateMenuItem(ctx, item)
}

func (s *MenuService) GetMenuItem(ctx context.Context, id int64) (models.MenuItem, error) {
	return s.Menu.GetMenuItemByID(ctx, id)
}

func (s *MenuService) ListByStore(ctx context.Context, storeID int64) ([]models.MenuItem, error) {
	return s.Menu.ListByStore(ctx, storeID)
}

func (s *MenuService) UpdateMenuItem(ctx context.Context, ownerID int64, item models.MenuItem) (models.MenuItem, error) {
	if err := s.checkOwnership(ctx, ownerID, item.StoreID); err != nil {
		return models.MenuItem{}, err
	}
	return s.Menu.UpdateMenuItem(ctx, item)
}

func (s *MenuService) DeleteMenuItem(ctx context.Context, ownerID, itemID, storeID int64) error {
	if err := s.checkOwnership(ctx, ownerID, storeID); err != nil {
		return err
	}
	return s.Menu.DeleteMenuItem(ctx, itemID, storeID)
}

// UploadImage stores an item photo and saves the resulting URL on the item.
func (s *MenuService) UploadImage(ctx context.Context, ownerID, itemID int64, data []byte, originalName string) (models.MenuItem, error) {
	item, err := s.Menu.GetMenuItemByID(ctx, itemID)
	if err != nil {
		return models.MenuItem{}, err
	}
	if err := s.checkOwnership(ctx, ownerID, item.StoreID); err != nil {
		return models.MenuItem{}, err
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}
	fileName := uuid.NewString() + ext
	url, err := utils.UploadFileToS3(data, fileName, "menu")
	if err != nil {
		return models.MenuItem{}, err
	}

	item.ImageURL = url
	return s.Menu.UpdateMenuItem(ctx, item)
}

func (s *MenuService) checkOwnership(ctx context.Context, ownerID, storeID int64) error {
	store, err := s.Stores.GetStoreByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store.OwnerID != ownerID {
		return models.ErrStoreNotFound
	}
	return nil
}
