package services

import (
	"context"
	"sort"

	"fintrack/internal/models"
	"fintrack/internal/store"
)

// lockAccount locks the account row for the rest of the transaction.
func lockAccount(ctx context.Context, accounts AccountStore, tx store.Getter, ownerID, accountID string) (models.Account, error) {
	account, err := accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return models.Account{}, notFound(err, ErrAccountNotFound)
	}
	if account.OwnerID != ownerID {
		return models.Account{}, ErrForeignReference
	}
	return account, nil
}

func lockTwoAccounts(ctx context.Context, tx store.Getter, accounts AccountStore, ownerID, firstID, secondID string) (models.Account, models.Account, error) {
	leftID, rightID := orderedIDs(firstID, secondID)
	leftAccount, err := lockAccount(ctx, accounts, tx, ownerID, leftID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	rightAccount, err := lockAccount(ctx, accounts, tx, ownerID, rightID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	if firstID == leftID {
		return leftAccount, rightAccount, nil
	}
	return rightAccount, leftAccount, nil
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}

func checkCategory(ctx context.Context, categories CategoryStore, ownerID, categoryID string) error {
	category, err := categories.GetByID(ctx, categoryID)
	if err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	if category.OwnerID != ownerID {
		return ErrForeignReference
	}
	return nil
}

// checkTags returns the distinct tag ids, sorted, once every one exists and
// belongs to the owner.
func checkTags(ctx context.Context, tags TagStore, ownerID string, tagIDs []string) ([]string, error) {
	unique := make([]string, 0, len(tagIDs))
	seen := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	sort.Strings(unique)
	if len(unique) == 0 {
		return unique, nil
	}
	found, err := tags.GetMany(ctx, unique)
	if err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}
	if len(found) != len(unique) {
		return nil, ErrTagNotFound
	}
	for _, tag := range found {
		if tag.OwnerID != ownerID {
			return nil, ErrForeignReference
		}
	}
	return unique, nil
}
