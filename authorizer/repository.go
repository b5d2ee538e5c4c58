package authorizer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	"github.com/roberto5g/mini-authorizer/authorizer/models"
)

// Repository is the card store. It has two backends: postgres for runtime
// and an in-memory map for tests. Both give the same exclusivity contract
// for Authorize: all work on one card number is serialized, work on
// different numbers proceeds in parallel.
type Repository struct {
	db *sql.DB

	mu    sync.RWMutex
	cards map[string]*models.Card
	locks map[string]*sync.Mutex
}

// NewRepository constructs the in-memory backend.
func NewRepository() *Repository {
	return &Repository{
		cards: make(map[string]*models.Card),
		locks: make(map[string]*sync.Mutex),
	}
}

// NewPGRepository constructs the db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateCard persists a new card, assigning its persistence identity on
// first save. A second card with the same number fails with
// ErrDuplicateCardNumber regardless of backend.
func (r *Repository) CreateCard(ctx context.Context, card *models.Card) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}

	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.cards[card.Number]; ok {
			return models.ErrDuplicateCardNumber
		}
		stored := *card
		r.cards[card.Number] = &stored
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO cards(card_id, card_number, password, balance)
        VALUES ($1, $2, $3, $4)
    `, card.ID, card.Number, card.Credential, card.Balance.String())
	if isUniqueViolation(err) {
		return models.ErrDuplicateCardNumber
	}
	return err
}

// FindByNumber is the plain, non-locking lookup.
func (r *Repository) FindByNumber(ctx context.Context, number string) (*models.Card, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		card, ok := r.cards[number]
		if !ok {
			return nil, models.ErrCardNotFound
		}
		found := *card
		return &found, nil
	}

	row := r.db.QueryRowContext(ctx, `
        SELECT card_id, card_number, password, balance FROM cards WHERE card_number = $1
    `, number)
	return scanCard(row)
}

// ExistsByNumber reports whether a card number is already registered.
func (r *Repository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		_, ok := r.cards[number]
		return ok, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM cards WHERE card_number = $1)
    `, number).Scan(&exists)
	return exists, err
}

// Authorize runs fn against the card under an exclusive per-number lock and
// persists the mutated card when fn succeeds, all within one unit of work.
// On the db backend the lock is a row-level SELECT ... FOR UPDATE inside a
// transaction; in memory it is a keyed mutex. Either way the lock is held
// from lookup until commit or rejection and released on every path.
func (r *Repository) Authorize(ctx context.Context, number string, fn func(card *models.Card) error) error {
	if r.db == nil {
		return r.authorizeMem(number, fn)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// bound lock waits so a stuck holder cannot hang the caller forever
	if _, err := tx.ExecContext(ctx, `set local statement_timeout = '3s'`); err != nil {
		return err
	}

	row := tx.QueryRowContext(ctx, `
        SELECT card_id, card_number, password, balance FROM cards WHERE card_number = $1 FOR UPDATE
    `, number)
	card, err := scanCard(row)
	if err != nil {
		return err
	}

	if err := fn(card); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE cards SET balance = $2 WHERE card_id = $1
    `, card.ID, card.Balance.String()); err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}

	return tx.Commit()
}

func (r *Repository) authorizeMem(number string, fn func(card *models.Card) error) error {
	lock := r.lockFor(number)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	stored, ok := r.cards[number]
	r.mu.RUnlock()
	if !ok {
		return models.ErrCardNotFound
	}

	// fn mutates a copy; the stored card only changes on success
	card := *stored
	if err := fn(&card); err != nil {
		return err
	}

	r.mu.Lock()
	r.cards[number] = &card
	r.mu.Unlock()
	return nil
}

func (r *Repository) lockFor(number string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[number]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[number] = lock
	}
	return lock
}

// Ping returns DB readiness.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*models.Card, error) {
	var id, number, credential, balance string
	if err := row.Scan(&id, &number, &credential, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCardNotFound
		}
		return nil, err
	}
	money, err := models.NewMoneyFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("scanning balance: %w", err)
	}
	return &models.Card{ID: id, Number: number, Credential: credential, Balance: money}, nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
