package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// OptionalService 选修科目（PSIR）章节进度
type OptionalService struct {
	OptionalRepo *repository.OptionalRepository
}

func NewOptionalService(optionalRepo *repository.OptionalRepository) *OptionalService {
	return &OptionalService{OptionalRepo: optionalRepo}
}

type OptionalSectionRequest struct {
	SectionName    string `json:"section_name" binding:"required,max=150"`
	TotalItems     int    `json:"total_items" binding:"gte=0"`
	CompletedItems int    `json:"completed_items" binding:"gte=0"`
}

type UpdateSectionRequest struct {
	TotalItems     *int `json:"total_items" binding:"omitempty,gte=0"`
	CompletedItems *int `json:"completed_items" binding:"omitempty,gte=0"`
}

// OptionalOverview 章节列表与整体完成率
type OptionalOverview struct {
	Sections   []model.OptionalSection `json:"sections"`
	Percentage float64                 `json:"percentage"`
}

// List 用户没有任何章节时先写入 PSIR 默认章节
func (s *OptionalService) List(ctx context.Context, userID uint) (*OptionalOverview, error) {
	sections, err := s.OptionalRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(sections) == 0 {
		defaults := make([]model.OptionalSection, len(model.DefaultPSIRSections))
		for i, d := range model.DefaultPSIRSections {
			defaults[i] = model.OptionalSection{UserID: userID, SectionName: d.SectionName, TotalItems: d.TotalItems}
		}
		if err := s.OptionalRepo.CreateBatch(ctx, defaults); err != nil {
			return nil, fmt.Errorf("seed optional sections: %w", err)
		}
		if sections, err = s.OptionalRepo.FindByUserID(ctx, userID); err != nil {
			return nil, err
		}
	}

	return &OptionalOverview{Sections: sections, Percentage: optionalPercent(sections)}, nil
}

// Upsert 按章节名新增或覆盖
func (s *OptionalService) Upsert(ctx context.Context, userID uint, req *OptionalSectionRequest) (*model.OptionalSection, error) {
	name := strings.TrimSpace(req.SectionName)
	if name == "" {
		return nil, util.ErrInvalidValue
	}

	section := &model.OptionalSection{
		UserID:         userID,
		SectionName:    name,
		TotalItems:     req.TotalItems,
		CompletedItems: req.CompletedItems,
	}
	if err := s.OptionalRepo.Upsert(ctx, section); err != nil {
		return nil, fmt.Errorf("save optional section: %w", err)
	}
	return s.OptionalRepo.FindByName(ctx, userID, name)
}

func (s *OptionalService) Update(ctx context.Context, userID, id uint, req *UpdateSectionRequest) (*model.OptionalSection, error) {
	section, err := s.OptionalRepo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}

	if req.TotalItems != nil {
		section.TotalItems = *req.TotalItems
	}
	if req.CompletedItems != nil {
		section.CompletedItems = *req.CompletedItems
	}

	if err := s.OptionalRepo.Save(ctx, section); err != nil {
		return nil, fmt.Errorf("update optional section: %w", err)
	}
	return section, nil
}

func (s *OptionalService) Delete(ctx context.Context, userID, id uint) error {
	affected, err := s.OptionalRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrSectionNotFound
	}
	return nil
}

func optionalPercent(sections []model.OptionalSection) float64 {
	return model.Round2(optionalCompletion(sections))
}
