package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"starcall/src/config"
	"starcall/src/db"
	"starcall/src/lib"
	"starcall/src/models"
	"starcall/src/models/scopes"
	"starcall/src/types"
	"strconv"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func toCelebrityResponse(c *models.Celebrity) types.APIResponseCelebrity {
	return types.APIResponseCelebrity{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           c.Slug,
		Bio:            c.Bio,
		Price:          c.Price,
		Currency:       c.Currency,
		PayoutsEnabled: c.PayoutsEnabled,
	}
}

func ListCelebrities(ctx context.Context, query *types.ListCelebritiesQuery) ([]types.APIResponseCelebrity, error) {
	var celebs []models.Celebrity
	if err := db.GetDb().
		Model(&models.Celebrity{}).
		Where("status = ?", types.CELEBRITY_ACTIVE).
		Scopes(scopes.Paginate(query.Limit, query.Offset)).
		Order("name ASC").
		Find(&celebs).
		Error; err != nil {
		log.Printf("[ListCelebrities] Error listing celebrities: %s\n", err.Error())
		return nil, types.ErrPersistence(err)
	}
	res := make([]types.APIResponseCelebrity, 0, len(celebs))
	for i := range celebs {
		res = append(res, toCelebrityResponse(&celebs[i]))
	}
	return res, nil
}

func GetCelebrity(ctx context.Context, celebSlug string) (*types.APIResponseCelebrity, error) {
	var celeb models.Celebrity
	if err := db.GetDb().
		Where("slug = ? AND status = ?", celebSlug, types.CELEBRITY_ACTIVE).
		First(&celeb).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("Celebrity not found")
		}
		return nil, types.ErrPersistence(err)
	}
	res := toCelebrityResponse(&celeb)
	return &res, nil
}

// uniqueSlug appends a counter until no other celebrity uses the slug.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "celebrity"
	}
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Celebrity{}).Unscoped().Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateCelebrityProfile turns the caller into a celebrity with an active
// listing. Payouts stay disabled until onboarding finishes.
func CreateCelebrityProfile(ctx context.Context, actor *Actor, body *types.CreateCelebrityRequestBody) (*types.APIResponseCelebrity, error) {
	if !actor.authenticated() {
		return nil, types.ErrUnauthorized()
	}
	var celeb models.Celebrity
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Celebrity{}).Where("user_id = ?", actor.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return types.ErrInvalidState("Celebrity profile already exists", string(types.CELEBRITY_ACTIVE))
		}
		s, err := uniqueSlug(tx, body.Name)
		if err != nil {
			return err
		}
		celeb = models.Celebrity{
			UserID:   actor.ID,
			Name:     body.Name,
			Slug:     s,
			Bio:      body.Bio,
			Price:    FromCents(ToCents(body.Price)),
			Currency: config.PayoutCurrency(),
			Status:   types.CELEBRITY_ACTIVE,
		}
		if err := tx.Create(&celeb).Error; err != nil {
			return err
		}
		if actor.Role != types.ROLE_ADMIN {
			return tx.Model(&models.User{}).Where("id = ?", actor.ID).Update("role", types.ROLE_CELEBRITY).Error
		}
		return nil
	})
	if err != nil {
		if _, ok := types.AsAppError(err); ok {
			return nil, err
		}
		log.Printf("[CreateCelebrityProfile] Error creating profile for user %d: %s\n", actor.ID, err.Error())
		return nil, types.ErrPersistence(err)
	}
	res := toCelebrityResponse(&celeb)
	return &res, nil
}

// StartPayoutOnboarding creates the connected account on first use and
// returns a hosted onboarding link for it.
func StartPayoutOnboarding(ctx context.Context, actor *Actor) (string, error) {
	if !actor.authenticated() {
		return "", types.ErrUnauthorized()
	}
	conn := db.GetDb()
	celeb, err := findCelebrityByUser(conn, actor.ID)
	if err != nil {
		return "", err
	}
	provider := lib.GetPaymentsProvider()

	var accountID string
	err = conn.Transaction(func(tx *gorm.DB) error {
		if celeb.HasPayoutAccount() {
			accountID = *celeb.StripeAccountID
			return nil
		}
		email := ""
		if celeb.User != nil {
			email = celeb.User.Email
		}
		id, err := provider.CreateConnectedAccount(ctx, email, map[string]string{
			"celebrityId": strconv.FormatUint(uint64(celeb.ID), 10),
			"slug":        celeb.Slug,
		})
		if err != nil {
			return types.ErrDependencyUnconfigured(lib.ProcessorMessage(err))
		}
		accountID = id
		return tx.Model(&models.Celebrity{}).Where("id = ?", celeb.ID).Update("stripe_account_id", id).Error
	})
	if err != nil {
		if _, ok := types.AsAppError(err); ok {
			return "", err
		}
		log.Printf("[StartPayoutOnboarding] Error saving account for celebrity %d: %s\n", celeb.ID, err.Error())
		return "", types.ErrPersistence(err)
	}

	link, err := provider.CreateOnboardingLink(ctx, accountID)
	if err != nil {
		log.Printf("[StartPayoutOnboarding] Error creating onboarding link: %s\n", err.Error())
		return "", types.ErrDependencyUnconfigured(lib.ProcessorMessage(err))
	}
	return link, nil
}
