// internal/service/comment_service.go
package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/policy"
	"github.com/taskhub/taskhub/internal/repository"
)

const maxCommentLength = 2000

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// CommentService handles task comment threads: flat rows linked by parent
// id, soft deletion with optional content clearing, and mention extraction.
type CommentService struct {
	comments repository.CommentRepository
	tasks    repository.TaskRepository
}

func NewCommentService(comments repository.CommentRepository, tasks repository.TaskRepository) *CommentService {
	return &CommentService{comments: comments, tasks: tasks}
}

// extractMentions returns the unique @usernames referenced in content, in
// order of first appearance.
func extractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var mentions []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		mentions = append(mentions, m[1])
	}
	return mentions
}

func validateCommentContent(content string) error {
	if content == "" {
		return apperr.Validation([]apperr.FieldError{{Field: "content", Message: "content is required"}})
	}
	if len(content) > maxCommentLength {
		return apperr.Validation([]apperr.FieldError{{Field: "content", Message: "content is too long"}})
	}
	return nil
}

// Create adds a comment to a task's thread. A reply must name a parent
// comment that belongs to the same task.
func (s *CommentService) Create(ctx context.Context, actor models.Principal, taskID, content string, parentID *string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "task not found")
		}
		return nil, apperr.Internal("load task", err)
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.New(apperr.KindParentNotFound, "parent comment not found")
			}
			return nil, apperr.Internal("load parent comment", err)
		}
		if parent.TaskID != taskID {
			return nil, apperr.New(apperr.KindParentNotFound, "parent comment belongs to a different task")
		}
	}

	now := time.Now()
	comment := &models.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    actor.ID,
		ParentID:  parentID,
		Content:   content,
		Mentions:  extractMentions(content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Internal("create comment", err)
	}
	return comment, nil
}

// ListByTask returns the task's full thread in creation order, soft-deleted
// comments included so reply chains stay intact.
func (s *CommentService) ListByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "task not found")
		}
		return nil, apperr.Internal("load task", err)
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.Internal("list comments", err)
	}
	return comments, nil
}

// Edit replaces a comment's content. Only the author may edit. Mentions are
// re-extracted and the edited flag is set even when the content is unchanged.
func (s *CommentService) Edit(ctx context.Context, actor models.Principal, id, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID {
		return nil, apperr.New(apperr.KindForbidden, "only the author may edit a comment")
	}
	if comment.IsDeleted {
		return nil, apperr.New(apperr.KindConflict, "cannot edit a deleted comment")
	}

	comment.Content = content
	comment.Mentions = extractMentions(content)
	comment.IsEdited = true
	comment.UpdatedAt = time.Now()

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperr.Internal("update comment", err)
	}
	return comment, nil
}

// SoftDelete marks a comment as deleted without removing the row, so replies
// keep a valid parent. With clearContent the text is replaced by a
// placeholder and the original is gone for good.
func (s *CommentService) SoftDelete(ctx context.Context, actor models.Principal, id string, clearContent bool) (*models.Comment, error) {
	comment, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, comment.UserID, models.RoleAdmin, models.RoleManager) {
		return nil, apperr.New(apperr.KindForbidden, "cannot delete this comment")
	}
	if comment.IsDeleted {
		return nil, apperr.New(apperr.KindConflict, "comment is already deleted")
	}

	now := time.Now()
	comment.IsDeleted = true
	comment.DeletedAt = &now
	comment.UpdatedAt = now
	if clearContent {
		comment.Content = models.DeletedContentPlaceholder
		comment.Mentions = nil
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperr.Internal("delete comment", err)
	}
	return comment, nil
}

// Restore clears the deleted flag. Content cleared during deletion is not
// recovered; the placeholder stays.
func (s *CommentService) Restore(ctx context.Context, actor models.Principal, id string) (*models.Comment, error) {
	comment, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, comment.UserID, models.RoleAdmin, models.RoleManager) {
		return nil, apperr.New(apperr.KindForbidden, "cannot restore this comment")
	}
	if !comment.IsDeleted {
		return nil, apperr.New(apperr.KindConflict, "comment is not deleted")
	}

	comment.IsDeleted = false
	comment.DeletedAt = nil
	comment.UpdatedAt = time.Now()

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperr.Internal("restore comment", err)
	}
	return comment, nil
}

func (s *CommentService) get(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "comment not found")
		}
		return nil, apperr.Internal("load comment", err)
	}
	return comment, nil
}
