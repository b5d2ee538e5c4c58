package authorizer

import (
	"context"
	"fmt"

	"github.com/roberto5g/mini-authorizer/authorizer/models"
	"github.com/roberto5g/mini-authorizer/internal/secure"
)

// Service owns the card lifecycle and the transaction authorization
// protocol. Authorization runs lock -> validator chain -> debit -> persist
// as one unit of work inside Repository.Authorize.
type Service struct {
	repo    *Repository
	encoder secure.Encoder
	chain   *models.ValidatorChain
}

// NewService wires the required validators in their fixed order: credential
// first, then balance. Additional validators run after the required ones.
func NewService(repo *Repository, encoder secure.Encoder, extra ...models.TransactionValidator) *Service {
	validators := append([]models.TransactionValidator{
		models.NewCorrectCredentialValidator(encoder),
		models.NewSufficientBalanceValidator(),
	}, extra...)

	return &Service{
		repo:    repo,
		encoder: encoder,
		chain:   models.NewValidatorChain(validators...),
	}
}

// CreateCard encodes the plaintext password and registers a new card with
// the fixed initial balance. The core only ever sees the encoded credential.
func (s *Service) CreateCard(ctx context.Context, number, password string) (*models.Card, error) {
	encoded, err := s.encoder.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("encoding credential: %w", err)
	}

	card, err := models.CreateCard(number, encoded)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	return card, nil
}

// GetBalance returns the current balance for a card number.
func (s *Service) GetBalance(ctx context.Context, number string) (models.Money, error) {
	card, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return models.Money{}, err
	}
	return card.Balance, nil
}

// Authorize evaluates a transaction against its target card. The repository
// holds the exclusive lock for the whole closure: a validator rejection or a
// debit failure rolls the unit of work back, so a rejected transaction never
// leaves a trace on the persisted balance.
func (s *Service) Authorize(ctx context.Context, transaction *models.Transaction) error {
	return s.repo.Authorize(ctx, transaction.CardNumber, func(card *models.Card) error {
		if err := s.chain.Validate(transaction, card); err != nil {
			return err
		}
		return card.Debit(transaction.Amount)
	})
}
