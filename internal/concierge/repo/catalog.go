package repo

import "github.com/dining-concierge/server/internal/concierge/model"

// SeedCatalog loads the development catalog into in-memory stores. The
// entries cover the cuisines the directory import collects.
func SeedCatalog(index *MemoryIndex, details *MemoryDetailStore) {
	for _, d := range DevRestaurants {
		if index != nil {
			index.Add(model.RestaurantSummary{ID: d.ID, CuisineType: d.CuisineType})
		}
		if details != nil {
			details.Put(d)
		}
	}
}

func coord(v float64) *float64 { return &v }

var DevRestaurants = []model.RestaurantDetail{
	{
		ID:          "dev-italian-001",
		Name:        "Trattoria Mulberry",
		Address:     "148 Mulberry St New York, NY 10013",
		CuisineType: "italian",
		Rating:      4.5,
		ReviewCount: 812,
		ZipCode:     "10013",
		Latitude:    coord(40.7195),
		Longitude:   coord(-73.9973),
	},
	{
		ID:          "dev-italian-002",
		Name:        "Osteria West Village",
		Address:     "61 Grove St New York, NY 10014",
		CuisineType: "italian",
		Rating:      4.0,
		ReviewCount: 356,
		ZipCode:     "10014",
	},
	{
		ID:          "dev-chinese-001",
		Name:        "Doyers Dumpling House",
		Address:     "13 Doyers St New York, NY 10013",
		CuisineType: "chinese",
		Rating:      4.5,
		ReviewCount: 1204,
		ZipCode:     "10013",
		Latitude:    coord(40.7144),
		Longitude:   coord(-73.9981),
	},
	{
		ID:          "dev-chinese-002",
		Name:        "Sichuan Garden Midtown",
		Address:     "243 E 58th St New York, NY 10022",
		CuisineType: "chinese",
		Rating:      4.0,
		ReviewCount: 489,
		ZipCode:     "10022",
	},
	{
		ID:          "dev-mexican-001",
		Name:        "Taqueria Avenue A",
		Address:     "102 Avenue A New York, NY 10009",
		CuisineType: "mexican",
		Rating:      4.5,
		ReviewCount: 677,
		ZipCode:     "10009",
		Latitude:    coord(40.7262),
		Longitude:   coord(-73.9838),
	},
	{
		ID:          "dev-mexican-002",
		Name:        "Cantina Hell's Kitchen",
		Address:     "725 9th Ave New York, NY 10019",
		CuisineType: "mexican",
		Rating:      3.5,
		ReviewCount: 241,
		ZipCode:     "10019",
	},
}
