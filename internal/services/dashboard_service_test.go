package services_test

import (
	"testing"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestDashboardService_Stats(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	products := repositories.NewMockProductRepository()
	users := repositories.NewMockUserRepository()
	service := services.NewDashboardService(orders, products, users)

	assert.NoError(t, users.Create(&models.User{Username: "ama", Email: "ama@example.com"}))
	assert.NoError(t, products.Create(&models.Product{Name: "Rice", Slug: "rice"}))
	placeTestOrder(t, orders, "user-1", "FB-20260827-AAAAAA")
	placeTestOrder(t, orders, "user-2", "FB-20260827-BBBBBB")

	stats, err := service.Stats()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.Metrics.TotalOrders)
	assert.True(t, stats.Metrics.TotalRevenue.Equal(dec(480)))
	assert.Equal(t, int64(2), stats.Metrics.StatusCounts[models.StatusPending])
	assert.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, "FB-20260827-BBBBBB", stats.RecentOrders[0].ReferenceCode)
}
