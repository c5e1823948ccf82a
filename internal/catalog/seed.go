package catalog

import "context"

// SeedCars is the initial rental fleet, inserted when the catalog is empty.
func SeedCars() []Car {
	return []Car{
		{Brand: "Peugeot", Model: "308", Year: 2019, PricePerDay: 4500, Currency: "PLN"},
		{Brand: "Honda", Model: "Civic", Year: 2021, PricePerDay: 5500, Currency: "PLN"},
		{Brand: "Ford", Model: "Focus", Year: 2019, PricePerDay: 4500, Currency: "PLN"},
		{Brand: "BMW", Model: "3 Series", Year: 2022, PricePerDay: 8000, Currency: "PLN"},
		{Brand: "Mercedes", Model: "C-Class", Year: 2021, PricePerDay: 9000, Currency: "PLN"},
		{Brand: "Audi", Model: "A4", Year: 2020, PricePerDay: 8500, Currency: "PLN"},
		{Brand: "Volkswagen", Model: "Golf", Year: 2018, PricePerDay: 4000, Currency: "PLN"},
		{Brand: "Hyundai", Model: "Elantra", Year: 2019, PricePerDay: 4200, Currency: "PLN"},
		{Brand: "Kia", Model: "Optima", Year: 2020, PricePerDay: 4800, Currency: "PLN"},
		{Brand: "Mazda", Model: "Mazda3", Year: 2021, PricePerDay: 5000, Currency: "PLN"},
		{Brand: "Subaru", Model: "Impreza", Year: 2022, PricePerDay: 5200, Currency: "PLN"},
		{Brand: "Nissan", Model: "Altima", Year: 2021, PricePerDay: 5500, Currency: "PLN"},
		{Brand: "Chevrolet", Model: "Malibu", Year: 2020, PricePerDay: 5300, Currency: "PLN"},
		{Brand: "Tesla", Model: "Model 3", Year: 2023, PricePerDay: 10000, Currency: "PLN"},
	}
}

// SeedIfEmpty inserts the initial fleet when no cars exist yet.
func SeedIfEmpty(ctx context.Context, repo Repo) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range SeedCars() {
		car := c
		if err := repo.Create(ctx, &car); err != nil {
			return err
		}
	}
	return nil
}
