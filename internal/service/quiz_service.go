package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"lurdinha/internal/cache"
	"lurdinha/internal/model"
	"lurdinha/internal/repository"
	"lurdinha/pkg/apperr"
)

// QuizService handles group polls: creating them, voting and tallying.
type QuizService struct {
	quizRepo  repository.QuizRepo
	groupRepo repository.GroupRepo
	votes     cache.VoteCache
}

func NewQuizService(quizRepo repository.QuizRepo, groupRepo repository.GroupRepo, votes cache.VoteCache) *QuizService {
	return &QuizService{
		quizRepo:  quizRepo,
		groupRepo: groupRepo,
		votes:     votes,
	}
}

// CreateQuiz creates a poll inside a group the actor belongs to.
func (s *QuizService) CreateQuiz(ctx context.Context, groupID, actor, question string, options []string) (*model.Quiz, error) {
	if actor == "" {
		return nil, apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.New(apperr.CodeValidation, "question is required")
	}
	if len(options) < 2 {
		return nil, apperr.New(apperr.CodeValidation, "at least two options are required")
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load group")
	}
	if group == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "group %s not found", groupID)
	}
	if !group.HasMember(actor) {
		return nil, apperr.New(apperr.CodeForbidden, "not a member of this group")
	}

	quiz := &model.Quiz{
		ID:        "q_" + uuid.New().String()[:8],
		GroupID:   groupID,
		Question:  question,
		Options:   options,
		Votes:     map[string]int{},
		CreatedBy: actor,
		CreatedAt: time.Now(),
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to create quiz")
	}
	return quiz, nil
}

// Vote records the actor's choice. A re-vote replaces the previous choice
// both in the document and in the tally.
func (s *QuizService) Vote(ctx context.Context, quizID, actor string, option int) error {
	if actor == "" {
		return apperr.New(apperr.CodeAuthRequired, "authenticated user required")
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return apperr.Wrap(err, apperr.CodePersistence, "failed to load quiz")
	}
	if quiz == nil {
		return apperr.Newf(apperr.CodeNotFound, "quiz %s not found", quizID)
	}
	if option < 0 || option >= len(quiz.Options) {
		return apperr.New(apperr.CodeValidation, "option out of range")
	}

	var prev *int
	if p, ok := quiz.Votes[actor]; ok {
		prev = &p
	}

	if err := s.quizRepo.SetVote(ctx, quizID, actor, option); err != nil {
		return apperr.Wrap(err, apperr.CodePersistence, "failed to record vote")
	}
	if err := s.votes.Record(ctx, quizID, option, prev); err != nil {
		return apperr.Wrap(err, apperr.CodePersistence, "failed to update tally")
	}
	return nil
}

// Results returns every option with its vote count, tally-backed.
func (s *QuizService) Results(ctx context.Context, quizID string) ([]model.QuizResult, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load quiz")
	}
	if quiz == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "quiz %s not found", quizID)
	}

	tally, err := s.votes.Tally(ctx, quizID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to read tally")
	}

	results := make([]model.QuizResult, len(quiz.Options))
	for i, opt := range quiz.Options {
		results[i] = model.QuizResult{Option: opt, Index: i, Votes: tally[i]}
	}
	return results, nil
}

// ListQuizzes returns a group's quizzes to its members.
func (s *QuizService) ListQuizzes(ctx context.Context, groupID, actor string) ([]*model.Quiz, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to load group")
	}
	if group == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "group %s not found", groupID)
	}
	if !group.HasMember(actor) {
		return nil, apperr.New(apperr.CodeForbidden, "not a member of this group")
	}
	quizzes, err := s.quizRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePersistence, "failed to list quizzes")
	}
	return quizzes, nil
}
