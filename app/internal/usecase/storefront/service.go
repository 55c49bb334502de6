package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	domcategory "example.com/catalog-shop/app/internal/domain/category"
	domproduct "example.com/catalog-shop/app/internal/domain/product"
	dom "example.com/catalog-shop/app/internal/domain/storefront"
)

type ProductService interface {
	Fetch(ctx context.Context) ([]domproduct.Product, uint64, error)
	Visible(version uint64, products []domproduct.Product, filter domproduct.ListFilter) []domproduct.Product
}

type CategoryService interface {
	List(ctx context.Context) ([]domcategory.Category, error)
}

// SessionStore keeps mounted sessions. Removing or evicting a session must Close it.
type SessionStore interface {
	Get(id string) (*Session, bool)
	Add(s *Session)
	Remove(id string)
}

// View is a session snapshot plus its derived product list.
type View struct {
	dom.State
	Status  dom.Status
	Visible []domproduct.Product
}

type Service struct {
	productSvc     ProductService
	categorySvc    CategoryService
	sessions       SessionStore
	logger         *zap.Logger
	requestTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewService(
	productSvc ProductService,
	categorySvc CategoryService,
	sessions SessionStore,
	logger *zap.Logger,
	requestTimeout time.Duration,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		productSvc:     productSvc,
		categorySvc:    categorySvc,
		sessions:       sessions,
		logger:         logger,
		requestTimeout: requestTimeout,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Mount returns the session for id, creating it and starting both catalog
// fetches when it does not exist yet.
func (s *Service) Mount(id string) (*Session, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}
	if sess, ok := s.sessions.Get(id); ok {
		s.mu.Unlock()
		return sess, nil
	}
	sess := newSession(s.ctx, id)
	s.sessions.Add(sess)
	s.mu.Unlock()

	s.logger.Debug("session mounted", zap.String("session_id", id))
	s.loadProducts(sess)
	s.loadCategories(sess)
	return sess, nil
}

// Unmount drops the session and aborts its in-flight fetches.
func (s *Service) Unmount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Remove(id)
	s.logger.Debug("session unmounted", zap.String("session_id", id))
}

// Retry re-issues the product fetch. A fetch still in flight is superseded.
func (s *Service) Retry(id string) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	s.loadProducts(sess)
	return nil
}

func (s *Service) Dispatch(id string, e dom.Event) (dom.State, error) {
	sess, err := s.session(id)
	if err != nil {
		return dom.State{}, err
	}
	return sess.apply(e), nil
}

func (s *Service) State(id string) (dom.State, error) {
	sess, err := s.session(id)
	if err != nil {
		return dom.State{}, err
	}
	return sess.State(), nil
}

func (s *Service) View(id string) (View, error) {
	state, err := s.State(id)
	if err != nil {
		return View{}, err
	}
	v := View{State: state, Status: state.Status()}
	if v.Status == dom.StatusReady {
		v.Visible = s.productSvc.Visible(state.CatalogVersion, state.Products, state.Filter)
	}
	return v, nil
}

// Close cancels every session's fetches and waits for them to return.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(id)
	if !ok || sess.Closed() {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

func (s *Service) loadProducts(sess *Session) {
	ctx, cancel, gen, ok := sess.beginFetch(fetchProducts, s.requestTimeout, dom.ProductsRequested{})
	if !ok {
		return
	}
	log := s.logger.With(zap.String("session_id", sess.ID()), zap.Stringer("fetch", fetchProducts), zap.Uint64("gen", gen))

	started := s.spawn(func() {
		defer cancel()
		products, version, err := s.productSvc.Fetch(ctx)

		var e dom.Event
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Debug("fetch canceled")
				return
			}
			log.Error("failed to fetch products", zap.Error(err))
			e = dom.ProductsFailed{Err: err.Error()}
		} else {
			e = dom.ProductsLoaded{Products: products, Version: version}
		}

		if !sess.completeFetch(fetchProducts, gen, e) {
			log.Debug("discarding superseded fetch result")
			return
		}
		if err == nil {
			log.Info("products loaded", zap.Int("count", len(products)), zap.Uint64("catalog_version", version))
		}
	})
	if !started {
		cancel()
	}
}

func (s *Service) loadCategories(sess *Session) {
	ctx, cancel, gen, ok := sess.beginFetch(fetchCategories, s.requestTimeout, nil)
	if !ok {
		return
	}
	log := s.logger.With(zap.String("session_id", sess.ID()), zap.Stringer("fetch", fetchCategories), zap.Uint64("gen", gen))

	started := s.spawn(func() {
		defer cancel()
		categories, err := s.categorySvc.List(ctx)

		var e dom.Event
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Debug("fetch canceled")
				return
			}
			// Not surfaced: the category filter falls back to "All Categories".
			log.Warn("error fetching categories", zap.Error(err))
			e = dom.CategoriesFailed{Err: err.Error()}
		} else {
			e = dom.CategoriesLoaded{Categories: categories}
		}

		if !sess.completeFetch(fetchCategories, gen, e) {
			log.Debug("discarding superseded fetch result")
		}
	})
	if !started {
		cancel()
	}
}
