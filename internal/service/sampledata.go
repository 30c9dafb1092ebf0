package service

import "storefront-service/internal/models"

// Static fallback data served when the store is unreachable. Degraded-mode
// availability is preferred over a hard failure on the read path.

func sampleShops() []models.Shop {
	return []models.Shop{
		{
			ID:           "1",
			Name:         "Pa Ple Kitchen",
			Description:  "Made-to-order Thai dishes",
			IsActive:     true,
			OpeningHours: "06:00-14:00",
			Phone:        "081-234-5678",
		},
		{
			ID:           "2",
			Name:         "Pa Mit Noodles",
			Description:  "House-recipe noodle soup",
			IsActive:     true,
			OpeningHours: "06:00-13:00",
			Phone:        "082-345-6789",
		},
		{
			ID:           "3",
			Name:         "Pa Aoi Desserts",
			Description:  "Desserts and drinks",
			IsActive:     true,
			OpeningHours: "06:00-13:00",
			Phone:        "083-456-7890",
		},
	}
}

func sampleMenuItems(shop string) []models.MenuItem {
	menus := map[string][]models.MenuItem{
		"Pa Ple Kitchen": {
			{ID: "1", Name: "Pad Thai", Description: "Classic pad thai with fresh shrimp", Price: 60, Category: models.CategoryFood, Shop: "Pa Ple Kitchen", Available: true},
			{ID: "2", Name: "Basil Chicken Rice", Description: "Stir-fried minced chicken with holy basil", Price: 50, Category: models.CategoryFood, Shop: "Pa Ple Kitchen", Available: true},
			{ID: "3", Name: "Som Tam", Description: "Traditional green papaya salad", Price: 40, Category: models.CategoryIsan, Shop: "Pa Ple Kitchen", Available: true},
		},
		"Pa Mit Noodles": {
			{ID: "4", Name: "Boat Noodles", Description: "Rich dark-broth boat noodles", Price: 55, Category: models.CategoryNoodle, Shop: "Pa Mit Noodles", Available: true},
			{ID: "5", Name: "Dry Egg Noodles", Description: "Egg noodles with minced pork", Price: 50, Category: models.CategoryNoodle, Shop: "Pa Mit Noodles", Available: true},
		},
		"Pa Aoi Desserts": {
			{ID: "6", Name: "Bua Loi", Description: "Rice dumplings in sweet coconut milk", Price: 35, Category: models.CategoryDessert, Shop: "Pa Aoi Desserts", Available: true},
			{ID: "7", Name: "Iced Milk Coffee", Description: "Thai-style iced coffee with milk", Price: 45, Category: models.CategoryDrink, Shop: "Pa Aoi Desserts", Available: true},
		},
	}
	return menus[shop]
}

func filterByCategory(items []models.MenuItem, category string) []models.MenuItem {
	if category == models.CategoryAll || category == "" {
		return items
	}
	filtered := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
