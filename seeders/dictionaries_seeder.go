package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedDepartments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение подразделений...")
	for _, d := range departmentFixtures {
		_, err := db.Exec(ctx, `
			INSERT INTO departments (name, code, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO NOTHING`, d.Name, d.Code, d.Description)
		if err != nil {
			return fmt.Errorf("подразделение %q: %w", d.Code, err)
		}
	}
	return nil
}

func seedCategories(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение категорий оборудования...")
	for _, c := range categoryFixtures {
		var exists bool
		if err := db.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM equipment_categories WHERE name = $1)", c.Name).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		_, err := db.Exec(ctx, `
			INSERT INTO equipment_categories (name, description, approval_required, max_booking_hours)
			VALUES ($1, $2, $3, $4)`, c.Name, c.Description, c.ApprovalRequired, c.MaxBookingHours)
		if err != nil {
			return fmt.Errorf("категория %q: %w", c.Name, err)
		}
	}
	return nil
}

func seedEquipments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение оборудования...")
	for _, e := range equipmentFixtures {
		var categoryID, departmentID uint64
		if err := db.QueryRow(ctx,
			"SELECT id FROM equipment_categories WHERE name = $1", e.CategoryName).Scan(&categoryID); err != nil {
			return fmt.Errorf("не найдена категория %q: %w", e.CategoryName, err)
		}
		if err := db.QueryRow(ctx,
			"SELECT id FROM departments WHERE code = $1", e.DepartmentCode).Scan(&departmentID); err != nil {
			return fmt.Errorf("не найдено подразделение %q: %w", e.DepartmentCode, err)
		}
		_, err := db.Exec(ctx, `
			INSERT INTO equipments (name, category_id, department_id, inventory_number, location)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (inventory_number) DO NOTHING`,
			e.Name, categoryID, departmentID, e.InventoryNumber, e.Location)
		if err != nil {
			return fmt.Errorf("оборудование %q: %w", e.InventoryNumber, err)
		}
	}
	return nil
}
