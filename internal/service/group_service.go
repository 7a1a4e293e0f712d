package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"lurdinha/internal/model"
	"lurdinha/internal/repository"
	"lurdinha/pkg/apperr"
)

// GroupService handles the social groups quizzes are shared in.
type GroupService struct {
	groupRepo repository.GroupRepo
}

func NewGroupService(groupRepo repository.GroupRepo) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// CreateGroup creates a group owned by the creator, who is its first member.
func (s *GroupService) CreateGroup(ctx context.Context, creator model.GroupMember, name, description string) (*model.Group, error) {
	if creator.UID == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.CodeValidation, "group name is required")
	}

	group := &model.Group{
		ID:          "g_" + uuid.New().String()[:8],
		Name:        name,
		Description: description,
		OwnerID:     creator.UID,
		Members:     []model.GroupMember{creator},
		CreatedAt:   time.Now(),
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to create group")
	}
	return group, nil
}

// GetGroup returns a group only to its members.
func (s *GroupService) GetGroup(ctx context.Context, id, actor string) (*model.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load group")
	}
	if group == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "group %s not found", id)
	}
	if !group.HasMember(actor) {
		return nil, apperr.New(apperr.CodeForbidden, "not a member of this group")
	}
	return group, nil
}

// JoinGroup adds the member; joining twice is a no-op.
func (s *GroupService) JoinGroup(ctx context.Context, id string, member model.GroupMember) (*model.Group, error) {
	if member.UID == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}

	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load group")
	}
	if group == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "group %s not found", id)
	}
	if group.HasMember(member.UID) {
		return group, nil
	}

	if _, err := s.groupRepo.AddMember(ctx, id, member); err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to join group")
	}
	return s.groupRepo.GetByID(ctx, id)
}

// ListGroups returns the groups the actor belongs to.
func (s *GroupService) ListGroups(ctx context.Context, actor string) ([]*model.Group, error) {
	if actor == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}
	groups, err := s.groupRepo.ListByMember(ctx, actor)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to list groups")
	}
	return groups, nil
}
