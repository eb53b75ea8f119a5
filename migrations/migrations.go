package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

// tables lists the DDL in dependency order.
var tables = []struct {
	name  string
	query string
}{
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
			description TEXT NOT NULL,
			image VARCHAR(255) NOT NULL DEFAULT ''
		);
	`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(150) NOT NULL UNIQUE,
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(254) NOT NULL,
			password_hash VARCHAR(255) NOT NULL
		);
	`},
	{"user_profiles", `
		CREATE TABLE IF NOT EXISTS user_profiles (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL UNIQUE,
			phone VARCHAR(15) NOT NULL,
			address TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
	`},
	{"cart_lines", `
		CREATE TABLE IF NOT EXISTS cart_lines (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			UNIQUE KEY cart_lines_user_product (user_id, product_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		);
	`},
	{"billing_details", `
		CREATE TABLE IF NOT EXISTS billing_details (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NULL,
			phone_number VARCHAR(15) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			address TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		);
	`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			billing_id INT NOT NULL,
			order_date DATETIME(6) NOT NULL,
			total_price DECIMAL(10,2) NOT NULL,
			total_quantity INT NOT NULL,
			status VARCHAR(50) NOT NULL,
			INDEX orders_user_date (user_id, order_date),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (billing_id) REFERENCES billing_details(id)
		);
	`},
	{"order_lines", `
		CREATE TABLE IF NOT EXISTS order_lines (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id)
		);
	`},
	{"payment_intents", `
		CREATE TABLE IF NOT EXISTS payment_intents (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			gateway_order_id VARCHAR(64) NOT NULL UNIQUE,
			amount BIGINT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX payment_intents_order (order_id),
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`},
}

// AutoMigrate creates every storefront table that does not exist yet.
// Each statement is retried while the database is still coming up.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, table := range tables {
		_, err := db.Exec(table.query)
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(table.query)
		}
		if err != nil {
			return fmt.Errorf("create table %s: %w", table.name, err)
		}
	}
	return nil
}
