package service

import (
	"errors"

	"github.com/docecupcake/cupcake-backend/internal/app/repository"
	"github.com/docecupcake/cupcake-backend/internal/cart"
	"github.com/docecupcake/cupcake-backend/internal/session"
	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/docecupcake/cupcake-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type CartView struct {
	Items      []cart.Item `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
}

func newCartView(c *cart.Cart) CartView {
	return CartView{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: util.ToFloat(c.TotalPrice()),
	}
}

// CartService edits the cart held by a browsing session. Edits fail with
// ErrSubmissionInProgress while the session is placing an order.
type CartService interface {
	View(sess *session.Session) CartView
	AddItem(sess *session.Session, cupcakeID uint, quantity int) (CartView, error)
	UpdateQuantity(sess *session.Session, cupcakeID uint, quantity int) (CartView, error)
	UpdateNotes(sess *session.Session, cupcakeID uint, notes string) (CartView, error)
	RemoveItem(sess *session.Session, cupcakeID uint) (CartView, error)
	Clear(sess *session.Session) (CartView, error)
}

type cartService struct {
	cupcakeRepo repository.CupcakeRepository
}

func NewCartService(cupcakeRepo repository.CupcakeRepository) CartService {
	return &cartService{cupcakeRepo: cupcakeRepo}
}

// mutate applies fn to the cart and keeps a started checkout in sync with it.
// An emptied cart discards the pending order.
func mutate(sess *session.Session, fn func(c *cart.Cart)) (CartView, error) {
	var view CartView
	err := sess.Edit(func(st *session.State) error {
		fn(st.Cart)
		if st.Pending != nil {
			if st.Cart.Len() == 0 {
				st.Pending = nil
			} else {
				st.Pending.Refresh(st.Cart.Items())
			}
		}
		view = newCartView(st.Cart)
		return nil
	})
	if errors.Is(err, session.ErrSessionBusy) {
		return CartView{}, ErrSubmissionInProgress
	}
	return view, err
}

// mutateLine is mutate for edits addressed to one line. Unknown lines are left
// alone and only logged.
func mutateLine(sess *session.Session, cupcakeID uint, fn func(c *cart.Cart)) (CartView, error) {
	return mutate(sess, func(c *cart.Cart) {
		if !c.Has(cupcakeID) {
			logger.Debug("Cart line not found, ignoring edit", map[string]interface{}{
				"session_id": sess.ID,
				"cupcake_id": cupcakeID,
			})
			return
		}
		fn(c)
	})
}

func (s *cartService) View(sess *session.Session) CartView {
	var view CartView
	_ = sess.Do(func(st *session.State) error {
		view = newCartView(st.Cart)
		return nil
	})
	return view
}

// AddItem captures the current catalog price of the cupcake.
func (s *cartService) AddItem(sess *session.Session, cupcakeID uint, quantity int) (CartView, error) {
	if quantity < 1 {
		return CartView{}, ErrInvalidQuantity
	}

	cupcake, err := s.cupcakeRepo.FindByID(cupcakeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartView{}, ErrCupcakeNotFound
		}
		return CartView{}, err
	}

	view, err := mutate(sess, func(c *cart.Cart) {
		c.AddItem(cart.Product{
			ID:    cupcake.ID,
			Name:  cupcake.Name,
			Image: cupcake.Image,
			Price: cupcake.Price,
		}, quantity)
	})
	if err != nil {
		return CartView{}, err
	}

	logger.Debug("Cart item added", map[string]interface{}{
		"session_id": sess.ID,
		"cupcake_id": cupcakeID,
		"quantity":   quantity,
	})
	return view, nil
}

func (s *cartService) UpdateQuantity(sess *session.Session, cupcakeID uint, quantity int) (CartView, error) {
	return mutateLine(sess, cupcakeID, func(c *cart.Cart) { c.UpdateQuantity(cupcakeID, quantity) })
}

func (s *cartService) UpdateNotes(sess *session.Session, cupcakeID uint, notes string) (CartView, error) {
	return mutateLine(sess, cupcakeID, func(c *cart.Cart) { c.UpdateNotes(cupcakeID, notes) })
}

func (s *cartService) RemoveItem(sess *session.Session, cupcakeID uint) (CartView, error) {
	return mutateLine(sess, cupcakeID, func(c *cart.Cart) { c.RemoveItem(cupcakeID) })
}

func (s *cartService) Clear(sess *session.Session) (CartView, error) {
	return mutate(sess, func(c *cart.Cart) { c.Clear() })
}
