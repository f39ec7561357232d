package services_test

import (
	"fmt"
	"sync"
	"testing"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeAddressRepo mirrors the repository's single-default behavior in memory.
type fakeAddressRepo struct {
	mu        sync.Mutex
	addresses map[string]models.DeliveryAddress
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: make(map[string]models.DeliveryAddress)}
}

func (r *fakeAddressRepo) GetDefault(userID string) (*models.DeliveryAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, address := range r.addresses {
		if address.UserID == userID && address.IsDefault {
			found := address
			return &found, nil
		}
	}
	return nil, fmt.Errorf("default address for user %s: %w", userID, repositories.ErrNotFound)
}

func (r *fakeAddressRepo) GetByUser(userID string) ([]models.DeliveryAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []models.DeliveryAddress
	for _, address := range r.addresses {
		if address.UserID == userID {
			list = append(list, address)
		}
	}
	return list, nil
}

func (r *fakeAddressRepo) Save(address *models.DeliveryAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if address.IsDefault {
		for id, other := range r.addresses {
			if other.UserID == address.UserID && other.ID != address.ID {
				other.IsDefault = false
				r.addresses[id] = other
			}
		}
	}
	r.addresses[address.ID] = *address
	return nil
}

func validAddress() *models.DeliveryAddress {
	return &models.DeliveryAddress{
		ContactName:   "Ama Mensah",
		ContactPhone:  "+233201234567",
		AddressLine1:  "12 Ring Road",
		City:          "Accra",
		State:         "Greater Accra",
		PostalZipCode: "GA-145",
		Country:       "Ghana",
	}
}

func TestAddressService_SaveDefaultAddress(t *testing.T) {
	repo := newFakeAddressRepo()
	service := services.NewAddressService(repo)

	saved, err := service.SaveDefaultAddress("user-1", validAddress())
	assert.NoError(t, err)
	assert.True(t, saved.IsDefault)
	assert.Equal(t, "user-1", saved.UserID)

	current, err := service.GetDefaultAddress("user-1")
	assert.NoError(t, err)
	assert.Equal(t, saved.ID, current.ID)
}

func TestAddressService_SaveEditsExistingDefaultInPlace(t *testing.T) {
	repo := newFakeAddressRepo()
	service := services.NewAddressService(repo)

	first, err := service.SaveDefaultAddress("user-1", validAddress())
	assert.NoError(t, err)

	// Saving again without an ID updates the same row instead of growing
	// the address book.
	edited := validAddress()
	edited.City = "Kumasi"
	second, err := service.SaveDefaultAddress("user-1", edited)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := service.GetAddresses("user-1")
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Kumasi", all[0].City)
}

func TestAddressService_SaveRejectsIncompleteAddress(t *testing.T) {
	repo := newFakeAddressRepo()
	service := services.NewAddressService(repo)

	address := validAddress()
	address.City = ""
	_, err := service.SaveDefaultAddress("user-1", address)
	assert.ErrorIs(t, err, services.ErrValidation)

	all, err := service.GetAddresses("user-1")
	assert.NoError(t, err)
	assert.Empty(t, all)
}
