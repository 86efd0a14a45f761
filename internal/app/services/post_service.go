package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/elihudev/elihudroom/internal/app/auth"
	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/datauri"
	"github.com/elihudev/elihudroom/internal/pkg/feed"
	"github.com/elihudev/elihudroom/internal/pkg/logger"
)

// PostService handles announcement posts and the live feed
type PostService interface {
	CreatePost(ctx context.Context, caller *models.User, classID int64, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, caller *models.User, classID int64) (*dto.PostListResponse, error)
	UpdatePost(ctx context.Context, caller *models.User, postID int64, req *dto.UpdatePostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, caller *models.User, postID int64) error
	SubscribeFeed(ctx context.Context, caller *models.User, classID int64, fn func([]*models.Post)) (*feed.Subscription, error)
}

type postService struct {
	posts  PostStore
	authz  *appauth.AuthorizationService
	hub    *feed.Hub
	logger zerolog.Logger
}

// NewPostService creates a new PostService instance
func NewPostService(posts PostStore, authz *appauth.AuthorizationService, hub *feed.Hub) PostService {
	return &postService{
		posts:  posts,
		authz:  authz,
		hub:    hub,
		logger: logger.WithField("component", "post_service"),
	}
}

func (s *postService) CreatePost(ctx context.Context, caller *models.User, classID int64, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	class, err := s.authz.RequireOwner(ctx, caller, classID)
	if err != nil {
		return nil, err
	}

	titulo, contenido, err := validateContent(req.Titulo, req.Contenido)
	if err != nil {
		return nil, err
	}
	archivos, err := validateAttachments(req.Archivos)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ClaseID:       classID,
		Titulo:        titulo,
		Contenido:     contenido,
		Archivos:      archivos,
		MaestroID:     caller.ID,
		MaestroName:   class.MaestroName,
		FechaCreacion: time.Now(),
	}
	id, err := s.posts.Create(ctx, post)
	if err != nil {
		s.logger.Error().Err(err).Int64("classId", classID).Msg("Failed to create post")
		return nil, err
	}
	post.ID = id

	s.logger.Info().Int64("postId", id).Int64("classId", classID).Int("attachments", len(archivos)).Msg("Post created")
	s.publishSnapshot(ctx, classID)

	resp := toPostResponse(post)
	return &resp, nil
}

func (s *postService) ListPosts(ctx context.Context, caller *models.User, classID int64) (*dto.PostListResponse, error) {
	if _, _, err := s.authz.RequireMember(ctx, caller, classID); err != nil {
		return nil, err
	}

	posts, err := s.posts.GetByClassID(ctx, classID)
	if err != nil {
		s.logger.Error().Err(err).Int64("classId", classID).Msg("Failed to list posts")
		return nil, err
	}

	resp := &dto.PostListResponse{Posts: make([]dto.PostResponse, 0, len(posts))}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, toPostResponse(p))
	}
	return resp, nil
}

func (s *postService) UpdatePost(ctx context.Context, caller *models.User, postID int64, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.requireAuthor(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	titulo, contenido, err := validateContent(req.Titulo, req.Contenido)
	if err != nil {
		return nil, err
	}
	archivos, err := validateAttachments(req.Archivos)
	if err != nil {
		return nil, err
	}

	post.Titulo = titulo
	post.Contenido = contenido
	post.Archivos = archivos
	now := time.Now()
	post.FechaEdicion = &now

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error().Err(err).Int64("postId", postID).Msg("Failed to update post")
		return nil, err
	}

	s.publishSnapshot(ctx, post.ClaseID)

	resp := toPostResponse(post)
	return &resp, nil
}

func (s *postService) DeletePost(ctx context.Context, caller *models.User, postID int64) error {
	post, err := s.requireAuthor(ctx, caller, postID)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		s.logger.Error().Err(err).Int64("postId", postID).Msg("Failed to delete post")
		return err
	}

	s.logger.Info().Int64("postId", postID).Int64("classId", post.ClaseID).Msg("Post deleted")
	s.publishSnapshot(ctx, post.ClaseID)
	return nil
}

// SubscribeFeed registers a live feed callback after checking the caller may
// read the class. The callback fires immediately with the current snapshot.
func (s *postService) SubscribeFeed(ctx context.Context, caller *models.User, classID int64, fn func([]*models.Post)) (*feed.Subscription, error) {
	if _, _, err := s.authz.RequireMember(ctx, caller, classID); err != nil {
		return nil, err
	}

	initial, err := s.posts.GetByClassID(ctx, classID)
	if err != nil {
		s.logger.Error().Err(err).Int64("classId", classID).Msg("Failed to load initial feed snapshot")
		return nil, err
	}

	return s.hub.Subscribe(classID, initial, fn), nil
}

// requireAuthor resolves a post and checks the caller wrote it. Authorship is
// checked through the class so an outsider probing post ids still sees
// NotFound rather than Forbidden.
func (s *postService) requireAuthor(ctx context.Context, caller *models.User, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}

	level, _, err := s.authz.LevelForClass(ctx, caller, post.ClaseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrClassNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	switch level {
	case appauth.AccessTeacher:
		return post, nil
	case appauth.AccessStudent:
		return nil, apperrors.NewForbiddenError("only the post author may modify it")
	default:
		return nil, apperrors.ErrPostNotFound
	}
}

// publishSnapshot re-reads the class feed and fans it out. The mutation that
// triggered it already succeeded, so a failure here is logged, not returned.
func (s *postService) publishSnapshot(ctx context.Context, classID int64) {
	posts, err := s.posts.GetByClassID(ctx, classID)
	if err != nil {
		s.logger.Error().Err(err).Int64("classId", classID).Msg("Failed to load feed snapshot for publish")
		return
	}
	s.hub.Publish(classID, posts)
}

func validateContent(titulo, contenido string) (string, string, error) {
	titulo = strings.TrimSpace(titulo)
	contenido = strings.TrimSpace(contenido)
	if titulo == "" {
		return "", "", apperrors.NewValidationError("titulo must not be empty")
	}
	if contenido == "" {
		return "", "", apperrors.NewValidationError("contenido must not be empty")
	}
	return titulo, contenido, nil
}

// maxEncodedAttachmentLen bounds the data URI of a MaxAttachmentSize
// attachment: 4/3 base64 expansion plus the "data:<type>;base64," header.
const maxEncodedAttachmentLen = (models.MaxAttachmentSize+2)/3*4 + 256

// validateAttachments checks the whole list before anything is persisted, so
// one bad file rejects the request without a partial write.
func validateAttachments(payloads []dto.AttachmentPayload) ([]models.Attachment, error) {
	if len(payloads) > models.MaxAttachmentsPerPost {
		return nil, apperrors.NewInvalidAttachmentError(
			fmt.Sprintf("a post may carry at most %d attachments, got %d", models.MaxAttachmentsPerPost, len(payloads)))
	}

	archivos := make([]models.Attachment, 0, len(payloads))
	for _, p := range payloads {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, apperrors.NewInvalidAttachmentError("attachment name must not be empty")
		}
		if !models.AllowedAttachmentTypes[p.Type] {
			return nil, apperrors.NewInvalidAttachmentError(
				fmt.Sprintf("attachment %q has unsupported type %q", name, p.Type))
		}

		// The encoded length already tells us an oversized payload apart, so
		// it is rejected before being base64-decoded just to measure it.
		if len(p.Data) > maxEncodedAttachmentLen {
			return nil, apperrors.NewInvalidAttachmentError(
				fmt.Sprintf("attachment %q exceeds the %d byte limit", name, models.MaxAttachmentSize))
		}

		mimeType, sizeBytes, err := datauri.Parse(p.Data)
		if err != nil {
			return nil, apperrors.NewInvalidAttachmentError(
				fmt.Sprintf("attachment %q does not carry a valid data URI", name))
		}
		if mimeType != p.Type {
			return nil, apperrors.NewInvalidAttachmentError(
				fmt.Sprintf("attachment %q declares type %q but its payload is %q", name, p.Type, mimeType))
		}
		if sizeBytes > models.MaxAttachmentSize {
			return nil, apperrors.NewInvalidAttachmentError(
				fmt.Sprintf("attachment %q is %d bytes, the limit is %d", name, sizeBytes, models.MaxAttachmentSize))
		}

		archivos = append(archivos, models.Attachment{
			Name: name,
			Type: p.Type,
			Size: sizeBytes,
			Data: p.Data,
		})
	}
	return archivos, nil
}

func toPostResponse(post *models.Post) dto.PostResponse {
	resp := dto.PostResponse{
		ID:            post.ID,
		ClaseID:       post.ClaseID,
		Titulo:        post.Titulo,
		Contenido:     post.Contenido,
		Archivos:      make([]dto.AttachmentResponse, 0, len(post.Archivos)),
		MaestroID:     post.MaestroID,
		MaestroName:   post.MaestroName,
		FechaCreacion: post.FechaCreacion,
		FechaEdicion:  post.FechaEdicion,
	}
	for _, a := range post.Archivos {
		resp.Archivos = append(resp.Archivos, dto.AttachmentResponse{
			Name: a.Name,
			Type: a.Type,
			Size: a.Size,
			Data: a.Data,
		})
	}
	return resp
}
