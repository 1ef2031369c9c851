package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quickpark/internal/db"
	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/money"
)

func TestCreateGarage_NewOwnerNeedsOnboarding(t *testing.T) {
	garages := &mockGarageStore{}
	provider := &mockProvider{}
	users := &memUsers{user: db.User{ID: testOwner, Email: "owner@example.com"}}
	log := quietLogger()
	svc := NewGarageService(garages, NewPayoutService(users, provider, "", log), log)

	garages.On("Create", mock.Anything, mock.MatchedBy(func(g *db.Garage) bool {
		return g.OwnerID == testOwner && g.Available && g.HourlyRate == 1250
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*db.Garage).ID = 31
	}).Return(nil)
	provider.On("CreateAccount", mock.Anything, "owner@example.com").Return("acct_new", nil)

	out, err := svc.CreateGarage(context.Background(), testOwner, entities.CreateGarageRequest{
		Address:    "Calle Mayor 1",
		HourlyRate: 1250,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(31), out.ID)
	assert.True(t, out.NeedsOnboarding)
	assert.Equal(t, "acct_new", out.StripeAccountID)
}

func TestCreateGarage_PayoutFailure(t *testing.T) {
	garages := &mockGarageStore{}
	provider := &mockProvider{}
	users := &memUsers{user: db.User{ID: testOwner, Email: "owner@example.com"}}
	log := quietLogger()
	svc := NewGarageService(garages, NewPayoutService(users, provider, "", log), log)

	provider.On("CreateAccount", mock.Anything, mock.Anything).Return("", fmt.Errorf("%w: down", apperrors.ErrPaymentProvider))

	_, err := svc.CreateGarage(context.Background(), testOwner, entities.CreateGarageRequest{Address: "Calle Mayor 1", HourlyRate: 500})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProvider)
	garages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateGarage(t *testing.T) {
	garages := &mockGarageStore{}
	svc := NewGarageService(garages, nil, quietLogger())
	garages.On("GetByID", mock.Anything, testGarage).Return(&db.Garage{ID: testGarage, OwnerID: testOwner}, nil)
	garages.On("Update", mock.Anything, testGarage, map[string]interface{}{
		"precio":     money.Cents(1250),
		"disponible": false,
	}).Return(&db.Garage{ID: testGarage, OwnerID: testOwner, HourlyRate: 1250}, nil)

	g, err := svc.UpdateGarage(context.Background(), testOwner, testGarage, map[string]interface{}{
		"precio":     12.5,
		"disponible": false,
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1250), g.HourlyRate)
}

func TestUpdateGarage_Rejections(t *testing.T) {
	garages := &mockGarageStore{}
	svc := NewGarageService(garages, nil, quietLogger())
	garages.On("GetByID", mock.Anything, testGarage).Return(&db.Garage{ID: testGarage, OwnerID: testOwner}, nil)

	cases := []struct {
		name   string
		actor  int64
		fields map[string]interface{}
		want   error
	}{
		{"not owner", testRenter, map[string]interface{}{"precio": 10.0}, apperrors.ErrForbidden},
		{"owner change", testOwner, map[string]interface{}{"propietario_id": 1}, apperrors.ErrInvalidInput},
		{"id change", testOwner, map[string]interface{}{"id": 1}, apperrors.ErrInvalidInput},
		{"negative price", testOwner, map[string]interface{}{"precio": -3.0}, apperrors.ErrInvalidInput},
		{"double sign price", testOwner, map[string]interface{}{"precio": "--5"}, apperrors.ErrInvalidInput},
		{"wrong type", testOwner, map[string]interface{}{"disponible": "yes"}, apperrors.ErrInvalidInput},
		{"empty", testOwner, map[string]interface{}{}, apperrors.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateGarage(context.Background(), tc.actor, testGarage, tc.fields)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	garages.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteGarage(t *testing.T) {
	garages := &mockGarageStore{}
	svc := NewGarageService(garages, nil, quietLogger())
	garages.On("GetByID", mock.Anything, testGarage).Return(&db.Garage{ID: testGarage, OwnerID: testOwner}, nil)
	garages.On("Delete", mock.Anything, testGarage).Return(nil)

	assert.ErrorIs(t, svc.DeleteGarage(context.Background(), testRenter, testGarage), apperrors.ErrForbidden)
	assert.NoError(t, svc.DeleteGarage(context.Background(), testOwner, testGarage))
	garages.AssertNumberOfCalls(t, "Delete", 1)
}

func TestDeleteGarage_RefusedWhileBooked(t *testing.T) {
	garages := &mockGarageStore{}
	svc := NewGarageService(garages, nil, quietLogger())
	garages.On("GetByID", mock.Anything, testGarage).Return(&db.Garage{ID: testGarage, OwnerID: testOwner}, nil)
	garages.On("Delete", mock.Anything, testGarage).
		Return(fmt.Errorf("%w: garage %d", apperrors.ErrGarageHasReservations, testGarage))

	err := svc.DeleteGarage(context.Background(), testOwner, testGarage)
	assert.ErrorIs(t, err, apperrors.ErrGarageHasReservations)
}

func TestListOwnGarages(t *testing.T) {
	garages := &mockGarageStore{}
	svc := NewGarageService(garages, nil, quietLogger())
	garages.On("ListByOwner", mock.Anything, testOwner).Return([]db.Garage{{ID: 2, OwnerID: testOwner}, {ID: 1, OwnerID: testOwner}}, nil)

	list, err := svc.ListOwnGarages(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	garages.AssertExpectations(t)
}
