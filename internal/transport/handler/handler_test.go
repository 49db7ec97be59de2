package handler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kkkatsube/picc/internal/entities"
	"github.com/kkkatsube/picc/internal/probe"
	"github.com/kkkatsube/picc/internal/repository/storage"
	"github.com/kkkatsube/picc/internal/session"
	"github.com/kkkatsube/picc/internal/thumbs"
)

// memStore is an in-memory stand-in for the pgx-backed storage, honoring
// the same contracts: owner-scoped lookups miss with ErrNotFound, reorders
// demand a full permutation of the scope.
type memStore struct {
	mu sync.Mutex

	nextID    int64
	users     map[int64]entities.User
	canvases  map[int64]entities.Canvas
	images    map[int64]entities.CanvasImage
	counters  map[int64]entities.Counter
	carousels map[int64]entities.FavoritesCarousel
	favImages map[int64]entities.FavoritesImage
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[int64]entities.User{},
		canvases:  map[int64]entities.Canvas{},
		images:    map[int64]entities.CanvasImage{},
		counters:  map[int64]entities.Counter{},
		carousels: map[int64]entities.FavoritesCarousel{},
		favImages: map[int64]entities.FavoritesImage{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(_ context.Context, name, email, hash string) (entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return entities.User{}, storage.ErrEmailTaken
		}
	}
	u := entities.User{ID: m.id(), Name: name, Email: email, PasswordHash: hash,
		CreatedTimestamp: time.Now(), UpdatedTimestamp: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return entities.User{}, storage.ErrNotFound
}

func (m *memStore) GetUser(_ context.Context, id int64) (entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return entities.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memStore) ListCanvases(_ context.Context, userID int64) ([]entities.Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entities.Canvas{}
	for _, c := range m.canvases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CreateCanvas(_ context.Context, userID int64, u storage.CanvasUpdate) (entities.Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := entities.Canvas{ID: m.id(), UserID: userID, Name: u.Name, Memo: u.Memo,
		Width: u.Width, Height: u.Height,
		CreatedTimestamp: time.Now(), UpdatedTimestamp: time.Now()}
	m.canvases[c.ID] = c
	return c, nil
}

func (m *memStore) GetCanvas(_ context.Context, userID, id int64) (entities.Canvas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.canvases[id]
	if !ok || c.UserID != userID {
		return entities.Canvas{}, storage.ErrNotFound
	}
	return c, nil
}

func (m *memStore) UpdateCanvas(ctx context.Context, userID, id int64, u storage.CanvasUpdate) (entities.Canvas, error) {
	c, err := m.GetCanvas(ctx, userID, id)
	if err != nil {
		return entities.Canvas{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Name != nil {
		c.Name = u.Name
	}
	if u.Memo != nil {
		c.Memo = u.Memo
	}
	if u.Width != nil {
		c.Width = u.Width
	}
	if u.Height != nil {
		c.Height = u.Height
	}
	c.UpdatedTimestamp = time.Now()
	m.canvases[id] = c
	return c, nil
}

func (m *memStore) DeleteCanvas(ctx context.Context, userID, id int64) error {
	if _, err := m.GetCanvas(ctx, userID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.canvases, id)
	return nil
}

func (m *memStore) ListCanvasImages(_ context.Context, canvasID int64) ([]entities.CanvasImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entities.CanvasImage{}
	for _, img := range m.images {
		if img.CanvasID == canvasID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memStore) CreateCanvasImage(_ context.Context, canvasID int64, c storage.CanvasImageCreate) (entities.CanvasImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img := entities.CanvasImage{
		ID: m.id(), CanvasID: canvasID, URI: c.URI,
		X: &c.X, Y: &c.Y, Width: &c.Width, Height: &c.Height,
		Left: &c.Left, Right: &c.Right, Top: &c.Top, Bottom: &c.Bottom,
		Size:             &c.Size,
		CreatedTimestamp: time.Now(), UpdatedTimestamp: time.Now(),
	}
	m.images[img.ID] = img
	return img, nil
}

func (m *memStore) GetCanvasImage(_ context.Context, canvasID, id int64) (entities.CanvasImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	if !ok || img.CanvasID != canvasID {
		return entities.CanvasImage{}, storage.ErrNotFound
	}
	return img, nil
}

func (m *memStore) UpdateCanvasImage(ctx context.Context, canvasID, id int64, u storage.CanvasImageUpdate) (entities.CanvasImage, error) {
	img, err := m.GetCanvasImage(ctx, canvasID, id)
	if err != nil {
		return entities.CanvasImage{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.URI != nil {
		img.URI = *u.URI
	}
	if u.X != nil {
		img.X = u.X
	}
	if u.Y != nil {
		img.Y = u.Y
	}
	if u.Width != nil {
		img.Width = u.Width
	}
	if u.Height != nil {
		img.Height = u.Height
	}
	if u.Left != nil {
		img.Left = u.Left
	}
	if u.Right != nil {
		img.Right = u.Right
	}
	if u.Top != nil {
		img.Top = u.Top
	}
	if u.Bottom != nil {
		img.Bottom = u.Bottom
	}
	if u.Size != nil {
		img.Size = u.Size
	}
	img.UpdatedTimestamp = time.Now()
	m.images[id] = img
	return img, nil
}

func (m *memStore) DeleteCanvasImage(ctx context.Context, canvasID, id int64) error {
	if _, err := m.GetCanvasImage(ctx, canvasID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, id)
	return nil
}

func (m *memStore) GetOrCreateCounter(_ context.Context, userID int64) (entities.Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[userID]; ok {
		return c, nil
	}
	c := entities.Counter{ID: m.id(), UserID: userID, Value: 0,
		CreatedTimestamp: time.Now(), UpdatedTimestamp: time.Now()}
	m.counters[userID] = c
	return c, nil
}

func (m *memStore) UpsertCounter(_ context.Context, userID int64, value int) (entities.Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[userID]
	if !ok {
		c = entities.Counter{ID: m.id(), UserID: userID, CreatedTimestamp: time.Now()}
	}
	c.Value = value
	c.UpdatedTimestamp = time.Now()
	m.counters[userID] = c
	return c, nil
}

func (m *memStore) ListCarousels(_ context.Context, userID int64) ([]entities.FavoritesCarousel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entities.FavoritesCarousel{}
	for _, c := range m.carousels {
		if c.UserID == userID {
			c.Images = m.carouselImagesLocked(c.ID)
			out = append(out, c)
		}
	}
	sortCarousels(out)
	return out, nil
}

func (m *memStore) CreateCarousel(_ context.Context, userID int64, name string) (entities.FavoritesCarousel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := -1
	for _, c := range m.carousels {
		if c.UserID == userID && c.Order > max {
			max = c.Order
		}
	}
	c := entities.FavoritesCarousel{ID: m.id(), UserID: userID, Name: name,
		Order: max + 1, Images: []entities.FavoritesImage{},
		CreatedTimestamp: time.Now(), UpdatedTimestamp: time.Now()}
	m.carousels[c.ID] = c
	return c, nil
}

func (m *memStore) GetCarousel(_ context.Context, userID, id int64) (entities.FavoritesCarousel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carousels[id]
	if !ok || c.UserID != userID {
		return entities.FavoritesCarousel{}, storage.ErrNotFound
	}
	c.Images = m.carouselImagesLocked(id)
	return c, nil
}

func (m *memStore) UpdateCarousel(ctx context.Context, userID, id int64, name string) (entities.FavoritesCarousel, error) {
	c, err := m.GetCarousel(ctx, userID, id)
	if err != nil {
		return entities.FavoritesCarousel{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Name = name
	c.UpdatedTimestamp = time.Now()
	m.carousels[id] = c
	return c, nil
}

func (m *memStore) DeleteCarousel(ctx context.Context, userID, id int64) error {
	if _, err := m.GetCarousel(ctx, userID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carousels, id)
	for imgID, img := range m.favImages {
		if img.CarouselID == id {
			delete(m.favImages, imgID)
		}
	}
	return nil
}

func (m *memStore) ReorderCarousels(_ context.Context, userID int64, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	scope := map[int64]bool{}
	for _, c := range m.carousels {
		if c.UserID == userID {
			scope[c.ID] = true
		}
	}
	if err := permutationError(ids, scope); err != nil {
		return err
	}
	for i, id := range ids {
		c := m.carousels[id]
		c.Order = i
		m.carousels[id] = c
	}
	return nil
}

func (m *memStore) ListCarouselImages(_ context.Context, carouselID int64) ([]entities.FavoritesImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carouselImagesLocked(carouselID), nil
}

func (m *memStore) CreateCarouselImage(_ context.Context, carouselID int64, imageURL string) (entities.FavoritesImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := -1
	for _, img := range m.favImages {
		if img.CarouselID == carouselID && img.Order > max {
			max = img.Order
		}
	}
	img := entities.FavoritesImage{ID: m.id(), CarouselID: carouselID,
		ImageURL: imageURL, Order: max + 1,
		CreatedTimestamp: time.Now(), UpdatedTimestamp: time.Now()}
	m.favImages[img.ID] = img
	return img, nil
}

func (m *memStore) DeleteFavoritesImage(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.favImages[id]
	if !ok {
		return storage.ErrNotFound
	}
	parent, ok := m.carousels[img.CarouselID]
	if !ok || parent.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.favImages, id)
	return nil
}

func (m *memStore) ReorderCarouselImages(_ context.Context, carouselID int64, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	scope := map[int64]bool{}
	for _, img := range m.favImages {
		if img.CarouselID == carouselID {
			scope[img.ID] = true
		}
	}
	if err := permutationError(ids, scope); err != nil {
		return err
	}
	for i, id := range ids {
		img := m.favImages[id]
		img.Order = i
		m.favImages[id] = img
	}
	return nil
}

func (m *memStore) carouselImagesLocked(carouselID int64) []entities.FavoritesImage {
	out := []entities.FavoritesImage{}
	for _, img := range m.favImages {
		if img.CarouselID == carouselID {
			out = append(out, img)
		}
	}
	sortFavImages(out)
	return out
}

func permutationError(ids []int64, scope map[int64]bool) error {
	e := &storage.ReorderError{}
	seen := map[int64]bool{}
	for _, id := range ids {
		if !scope[id] || seen[id] {
			e.BadIDs = append(e.BadIDs, id)
		}
		seen[id] = true
	}
	for id := range scope {
		if !seen[id] {
			e.MissingIDs = append(e.MissingIDs, id)
		}
	}
	if len(e.BadIDs) == 0 && len(e.MissingIDs) == 0 {
		return nil
	}
	return e
}

func sortCarousels(cs []entities.FavoritesCarousel) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Order < cs[j-1].Order; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func sortFavImages(imgs []entities.FavoritesImage) {
	for i := 1; i < len(imgs); i++ {
		for j := i; j > 0 && imgs[j].Order < imgs[j-1].Order; j-- {
			imgs[j], imgs[j-1] = imgs[j-1], imgs[j]
		}
	}
}

// memSessions issues sequential tokens backed by a map.
type memSessions struct {
	mu     sync.Mutex
	next   int
	tokens map[string]int64
}

func newMemSessions() *memSessions {
	return &memSessions{tokens: map[string]int64{}}
}

func (s *memSessions) Create(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	token := fmt.Sprintf("tok-%d", s.next)
	s.tokens[token] = userID
	return token, nil
}

func (s *memSessions) UserID(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return 0, session.ErrNoSession
	}
	return id, nil
}

func (s *memSessions) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// stubProber returns canned dimensions, or an error to simulate an
// unreachable asset.
type stubProber struct {
	dims probe.Dimensions
	err  error
}

func (p *stubProber) Measure(context.Context, string) (probe.Dimensions, error) {
	if p.err != nil {
		return probe.Dimensions{}, p.err
	}
	return p.dims, nil
}

// recordQueue captures enqueued thumbnail jobs.
type recordQueue struct {
	mu   sync.Mutex
	jobs []thumbs.ThumbJob
}

func (q *recordQueue) EnqueueThumb(_ context.Context, job thumbs.ThumbJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

var errDown = errors.New("connection refused")
