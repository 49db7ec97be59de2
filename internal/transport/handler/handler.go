package handler

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/kkkatsube/picc/internal/config"
	"github.com/kkkatsube/picc/internal/entities"
	"github.com/kkkatsube/picc/internal/health"
	"github.com/kkkatsube/picc/internal/probe"
	"github.com/kkkatsube/picc/internal/repository/storage"
	"github.com/kkkatsube/picc/internal/thumbs"
)

type Storage interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	GetUser(ctx context.Context, id int64) (entities.User, error)

	ListCanvases(ctx context.Context, userID int64) ([]entities.Canvas, error)
	CreateCanvas(ctx context.Context, userID int64, u storage.CanvasUpdate) (entities.Canvas, error)
	GetCanvas(ctx context.Context, userID, id int64) (entities.Canvas, error)
	UpdateCanvas(ctx context.Context, userID, id int64, u storage.CanvasUpdate) (entities.Canvas, error)
	DeleteCanvas(ctx context.Context, userID, id int64) error

	ListCanvasImages(ctx context.Context, canvasID int64) ([]entities.CanvasImage, error)
	CreateCanvasImage(ctx context.Context, canvasID int64, c storage.CanvasImageCreate) (entities.CanvasImage, error)
	GetCanvasImage(ctx context.Context, canvasID, id int64) (entities.CanvasImage, error)
	UpdateCanvasImage(ctx context.Context, canvasID, id int64, u storage.CanvasImageUpdate) (entities.CanvasImage, error)
	DeleteCanvasImage(ctx context.Context, canvasID, id int64) error

	GetOrCreateCounter(ctx context.Context, userID int64) (entities.Counter, error)
	UpsertCounter(ctx context.Context, userID int64, value int) (entities.Counter, error)

	ListCarousels(ctx context.Context, userID int64) ([]entities.FavoritesCarousel, error)
	CreateCarousel(ctx context.Context, userID int64, name string) (entities.FavoritesCarousel, error)
	GetCarousel(ctx context.Context, userID, id int64) (entities.FavoritesCarousel, error)
	UpdateCarousel(ctx context.Context, userID, id int64, name string) (entities.FavoritesCarousel, error)
	DeleteCarousel(ctx context.Context, userID, id int64) error
	ReorderCarousels(ctx context.Context, userID int64, ids []int64) error

	ListCarouselImages(ctx context.Context, carouselID int64) ([]entities.FavoritesImage, error)
	CreateCarouselImage(ctx context.Context, carouselID int64, imageURL string) (entities.FavoritesImage, error)
	DeleteFavoritesImage(ctx context.Context, userID, id int64) error
	ReorderCarouselImages(ctx context.Context, carouselID int64, ids []int64) error
}

// Prober resolves natural pixel dimensions of a remote asset.
type Prober interface {
	Measure(ctx context.Context, url string) (probe.Dimensions, error)
}

// Sessions is the bearer-token side of auth.
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	UserID(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

// ThumbQueue enqueues background thumbnail generation.
type ThumbQueue interface {
	EnqueueThumb(ctx context.Context, job thumbs.ThumbJob) error
}

type Handler struct {
	storage   Storage
	prober    Prober
	sessions  Sessions
	thumbs    ThumbQueue
	health    *health.Service
	cfg       *config.Config
	validator *validator.Validate
}

func New(st Storage, prober Prober, sessions Sessions, tq ThumbQueue, hs *health.Service, cfg *config.Config) *Handler {
	return &Handler{
		storage:   st,
		prober:    prober,
		sessions:  sessions,
		thumbs:    tq,
		health:    hs,
		cfg:       cfg,
		validator: newValidator(),
	}
}
