// Package service orchestrates box mutations: per-owner name uniqueness, the
// owner's reference array, the synthesized default box, and the favorite-copy
// flow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/audit"
	"dexrank/internal/box/models"
	catalogstore "dexrank/internal/catalog/store"
)

var boxMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dexrank_box_mutations_total",
	Help: "Committed box mutations by operation",
}, []string{"operation"})

// Service owns the box lifecycle.
type Service struct {
	txStores StoreTx
	catalog  catalogstore.Store
	audit    audit.Publisher
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewService(txStores StoreTx, catalog catalogstore.Store, publisher audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		txStores: txStores,
		catalog:  catalog,
		audit:    publisher,
		logger:   logger,
		tracer:   otel.Tracer("dexrank/box"),
	}
}

// UpdateParams is a partial update. Nil fields keep the current value.
type UpdateParams struct {
	Name    *string
	Public  *bool
	Pokemon *[]id.PokemonID
}

// Create validates and persists a new box and appends it to the owner's
// references, atomically. The default box name is reserved.
func (s *Service) Create(ctx context.Context, ownerID id.UserID, name string, public bool, pokemon []id.PokemonID) (*models.Box, error) {
	ctx, span := s.tracer.Start(ctx, "box.Create")
	defer span.End()

	box, err := models.NewBox(id.NewBoxID(), ownerID, name, public, pokemon, time.Now())
	if err != nil {
		return nil, err
	}
	if box.Name == models.DefaultBoxName {
		return nil, dErrors.New(dErrors.CodeValidation, "this name is reserved for the default box")
	}

	err = s.txStores.RunInTx(ctx, func(stores Stores) error {
		if err := assertNameAvailable(ctx, stores, ownerID, box.Name, id.BoxID{}); err != nil {
			return err
		}
		if err := stores.Boxes.Create(ctx, box); err != nil {
			return translateStoreErr(err, "box")
		}
		if err := stores.Users.AppendBox(ctx, ownerID, box.ID); err != nil {
			return translateStoreErr(err, "user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionBoxCreated,
		ActorID:    ownerID.String(),
		EntityType: "box",
		EntityID:   box.ID.String(),
		Detail:     map[string]string{"name": box.Name},
	})
	boxMutationsTotal.WithLabelValues("create").Inc()
	return box, nil
}

// Get returns a box. The default box is synthesized from the catalog; stored
// boxes are visible to their owner and, when public, to everyone else.
// Private boxes read by strangers surface as not found, never as forbidden.
func (s *Service) Get(ctx context.Context, requesterID id.UserID, boxID id.BoxID) (*models.Box, error) {
	if boxID == models.DefaultBoxID {
		return s.defaultBox(ctx, requesterID)
	}

	var box *models.Box
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		var err error
		box, err = stores.Boxes.FindByID(ctx, boxID)
		if err != nil {
			return translateStoreErr(err, "box")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if box.OwnerID != requesterID && !box.Public {
		return nil, dErrors.New(dErrors.CodeNotFound, "box not found")
	}
	return box, nil
}

// List returns the requester's boxes with the synthesized default box first,
// then stored boxes newest-first.
func (s *Service) List(ctx context.Context, requesterID id.UserID) ([]*models.Box, error) {
	def, err := s.defaultBox(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	var owned []*models.Box
	err = s.txStores.RunInTx(ctx, func(stores Stores) error {
		var err error
		owned, err = stores.Boxes.ListByOwner(ctx, requesterID)
		if err != nil {
			return translateStoreErr(err, "box")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return append([]*models.Box{def}, owned...), nil
}

// Update applies a partial update to an owned box. The default box is
// synthesized and cannot be written.
func (s *Service) Update(ctx context.Context, requesterID id.UserID, boxID id.BoxID, params UpdateParams) (*models.Box, error) {
	ctx, span := s.tracer.Start(ctx, "box.Update")
	defer span.End()

	if boxID == models.DefaultBoxID {
		return nil, dErrors.New(dErrors.CodeForbidden, "the default box cannot be modified")
	}

	var updated *models.Box
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		box, err := s.loadOwned(ctx, stores, requesterID, boxID)
		if err != nil {
			return err
		}

		if params.Name != nil {
			name := *params.Name
			if err := models.ValidateName(name); err != nil {
				return err
			}
			if name == models.DefaultBoxName {
				return dErrors.New(dErrors.CodeValidation, "this name is reserved for the default box")
			}
			if name != box.Name {
				if err := assertNameAvailable(ctx, stores, requesterID, name, boxID); err != nil {
					return err
				}
			}
			box.Name = name
		}
		if params.Public != nil {
			box.Public = *params.Public
		}
		if params.Pokemon != nil {
			fresh, err := models.NewBox(box.ID, box.OwnerID, box.Name, box.Public, *params.Pokemon, box.CreatedAt)
			if err != nil {
				return err
			}
			box.Pokemon = fresh.Pokemon
		}

		box.UpdatedAt = time.Now()
		if err := stores.Boxes.Update(ctx, box); err != nil {
			return translateStoreErr(err, "box")
		}
		updated = box
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionBoxUpdated,
		ActorID:    requesterID.String(),
		EntityType: "box",
		EntityID:   boxID.String(),
	})
	boxMutationsTotal.WithLabelValues("update").Inc()
	return updated, nil
}

// Delete removes an owned box and pulls it from the owner's references,
// atomically. The default box cannot be deleted.
func (s *Service) Delete(ctx context.Context, requesterID id.UserID, boxID id.BoxID) error {
	ctx, span := s.tracer.Start(ctx, "box.Delete")
	defer span.End()

	if boxID == models.DefaultBoxID {
		return dErrors.New(dErrors.CodeForbidden, "the default box cannot be deleted")
	}

	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		if _, err := s.loadOwned(ctx, stores, requesterID, boxID); err != nil {
			return err
		}
		if err := stores.Boxes.Delete(ctx, boxID); err != nil {
			return translateStoreErr(err, "box")
		}
		if err := stores.Users.RemoveBox(ctx, requesterID, boxID); err != nil {
			return translateStoreErr(err, "user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionBoxDeleted,
		ActorID:    requesterID.String(),
		EntityType: "box",
		EntityID:   boxID.String(),
	})
	boxMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// Favorite copies a public box into the requester's collection and bumps the
// source's counter, all in one transaction. The copy starts private with a
// zeroed counter and gets the first free name derived from the source's.
func (s *Service) Favorite(ctx context.Context, requesterID id.UserID, boxID id.BoxID) (*models.Box, error) {
	ctx, span := s.tracer.Start(ctx, "box.Favorite")
	defer span.End()

	if boxID == models.DefaultBoxID {
		return nil, dErrors.New(dErrors.CodeNotFound, "box not found")
	}

	var cp *models.Box
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		source, err := stores.Boxes.FindByID(ctx, boxID)
		if err != nil {
			return translateStoreErr(err, "box")
		}
		if source.OwnerID == requesterID {
			return dErrors.New(dErrors.CodeForbidden, "cannot favorite your own box")
		}
		if !source.Public {
			return dErrors.New(dErrors.CodeNotFound, "box not found")
		}

		name, err := generateCopyName(ctx, stores, requesterID, source.Name)
		if err != nil {
			return err
		}
		cp, err = models.NewBox(id.NewBoxID(), requesterID, name, false, source.Pokemon, time.Now())
		if err != nil {
			return err
		}
		if err := stores.Boxes.Create(ctx, cp); err != nil {
			return translateStoreErr(err, "box")
		}
		if err := stores.Users.AppendBox(ctx, requesterID, cp.ID); err != nil {
			return translateStoreErr(err, "user")
		}
		if err := stores.Boxes.IncrementFavoriteCount(ctx, source.ID); err != nil {
			return translateStoreErr(err, "box")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionBoxFavorited,
		ActorID:    requesterID.String(),
		EntityType: "box",
		EntityID:   boxID.String(),
		Detail:     map[string]string{"copy_id": cp.ID.String(), "copy_name": cp.Name},
	})
	boxMutationsTotal.WithLabelValues("favorite").Inc()
	return cp, nil
}

// defaultBox synthesizes the virtual box holding the whole catalog.
func (s *Service) defaultBox(ctx context.Context, requesterID id.UserID) (*models.Box, error) {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load catalog")
	}
	pokemon := make([]id.PokemonID, len(entries))
	for i, p := range entries {
		pokemon[i] = p.ID
	}
	return models.DefaultBox(requesterID, pokemon), nil
}

func (s *Service) loadOwned(ctx context.Context, stores Stores, requesterID id.UserID, boxID id.BoxID) (*models.Box, error) {
	box, err := stores.Boxes.FindByID(ctx, boxID)
	if err != nil {
		return nil, translateStoreErr(err, "box")
	}
	if box.OwnerID != requesterID {
		if box.Public {
			return nil, dErrors.New(dErrors.CodeForbidden, "box belongs to another user")
		}
		return nil, dErrors.New(dErrors.CodeNotFound, "box not found")
	}
	return box, nil
}

// assertNameAvailable enforces per-owner name uniqueness, tolerating the box
// being updated under its own name. The database constraint closes the
// remaining race at commit time.
func assertNameAvailable(ctx context.Context, stores Stores, ownerID id.UserID, name string, exclude id.BoxID) error {
	existing, err := stores.Boxes.FindByOwnerAndName(ctx, ownerID, name)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return translateStoreErr(err, "box")
	}
	if existing.ID == exclude {
		return nil
	}
	return dErrors.New(dErrors.CodeConflict, "a box with this name already exists")
}

func translateStoreErr(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, entity+" already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}
