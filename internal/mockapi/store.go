package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"juiceshop/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store is the in-memory backing state of the mock backend: users and
// products plus one cart and one favorite set per user. Ids are
// server-assigned and incrementing, like the real backend's.
type Store struct {
	mu            sync.Mutex
	users         map[int]models.User // Password holds the bcrypt hash
	products      map[int]models.Product
	carts         map[int]map[int]int  // user id -> product id -> quantity
	favorites     map[int]map[int]bool // user id -> product id set
	nextUserID    int
	nextProductID int
}

func NewStore() *Store {
	return &Store{
		users:         make(map[int]models.User),
		products:      make(map[int]models.Product),
		carts:         make(map[int]map[int]int),
		favorites:     make(map[int]map[int]bool),
		nextUserID:    1,
		nextProductID: 1,
	}
}

// Seed loads the sample catalog and user set used for local development
// and by the test suite. Every seeded account's password is "secret123".
func (s *Store) Seed() error {
	products := []models.Product{
		{Name: "Red Apple Juice", Price: 2.99, Description: "Cold-pressed juice from fresh red apples", Ingredients: "100% apple", Stock: 150, Image: "apple-red.jpg"},
		{Name: "Banana Smoothie", Price: 1.99, Description: "Creamy smoothie from ripe bananas, rich in potassium", Ingredients: "100% banana", Stock: 200, Image: "banana.jpg"},
		{Name: "Valencia Orange Juice", Price: 2.49, Description: "Refreshing juice squeezed from Valencia oranges", Ingredients: "100% orange", Stock: 100, Image: "orange.jpg"},
		{Name: "Strawberry Smoothie", Price: 4.99, Description: "Sweet strawberry smoothie, great for breakfast", Ingredients: "100% strawberry", Stock: 50, Image: "strawberry.jpg"},
		{Name: "Melon Juice", Price: 5.99, Description: "Fresh melon juice for hot days", Ingredients: "100% melon", Stock: 30, Image: "melon.jpg"},
		{Name: "Watermelon Juice", Price: 6.99, Description: "Big and sweet, the summer classic", Ingredients: "100% watermelon", Stock: 20, Image: "watermelon.jpg"},
		{Name: "Mango Smoothie", Price: 3.99, Description: "Tropical mango smoothie, king of fruits", Ingredients: "100% mango", Stock: 80, Image: "mango.jpg"},
		{Name: "Pineapple Juice", Price: 4.49, Description: "Exotic pineapple juice with a sour kick", Ingredients: "100% pineapple", Stock: 60, Image: "pineapple.jpg"},
	}
	for _, p := range products {
		s.CreateProduct(models.ProductInput{
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Ingredients: p.Ingredients,
			Stock:       p.Stock,
			Image:       p.Image,
		})
	}

	users := []models.User{
		{Name: "Juan Perez", Email: "juan@example.com", Role: string(models.RoleUser)},
		{Name: "Maria Garcia", Email: "maria@example.com", Role: string(models.RoleAdmin)},
		{Name: "Carlos Lopez", Email: "carlos@example.com", Role: string(models.RoleUser)},
		{Name: "Ana Martinez", Email: "ana@example.com", Role: string(models.RoleAdmin)},
		{Name: "Roberto Sanchez", Email: "roberto@example.com", Role: string(models.RoleUser)},
	}
	for _, u := range users {
		u.Password = "secret123"
		if _, err := s.CreateUser(u); err != nil {
			return err
		}
	}
	return nil
}

// CreateUser hashes the plaintext password and stores the user with a
// fresh id. An empty role defaults to USER.
func (s *Store) CreateUser(input models.User) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, input.Email) {
			return models.User{}, ErrEmailTaken
		}
	}

	role := input.Role
	if role != string(models.RoleAdmin) {
		role = string(models.RoleUser)
	}

	user := models.User{
		ID:       s.nextUserID,
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Role:     role,
	}
	s.users[user.ID] = user
	s.nextUserID++

	return sanitize(user), nil
}

// Authenticate verifies the credentials and returns the matching user.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	var found models.User
	ok := false
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found = u
			ok = true
			break
		}
	}
	s.mu.Unlock()

	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return sanitize(found), nil
}

func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, sanitize(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *Store) User(id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return sanitize(user), nil
}

func (s *Store) UserByEmail(email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return sanitize(u), nil
		}
	}
	return models.User{}, ErrNotFound
}

// UpdateUser updates name, email and role; a non-empty password is
// rehashed, an empty one keeps the old hash.
func (s *Store) UpdateUser(id int, input models.User) (models.User, error) {
	var hash string
	if input.Password != "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, err
		}
		hash = string(raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Role == string(models.RoleAdmin) || input.Role == string(models.RoleUser) {
		user.Role = input.Role
	}
	if hash != "" {
		user.Password = hash
	}
	s.users[id] = user

	return sanitize(user), nil
}

func (s *Store) DeleteUser(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.carts, id)
	delete(s.favorites, id)
	return nil
}

func (s *Store) CreateProduct(input models.ProductInput) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := models.Product{
		ID:          s.nextProductID,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Ingredients: input.Ingredients,
		Stock:       input.Stock,
		Image:       input.Image,
	}
	s.products[product.ID] = product
	s.nextProductID++
	return product
}

func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (s *Store) Product(id int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return product, nil
}

// SearchProducts matches on a case-insensitive name substring.
func (s *Store) SearchProducts(name string) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(name)
	matches := make([]models.Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (s *Store) UpdateProduct(id int, input models.ProductInput) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return models.Product{}, ErrNotFound
	}

	product := models.Product{
		ID:          id,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Ingredients: input.Ingredients,
		Stock:       input.Stock,
		Image:       input.Image,
	}
	s.products[id] = product
	return product, nil
}

func (s *Store) DeleteProduct(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	for _, cart := range s.carts {
		delete(cart, id)
	}
	for _, favs := range s.favorites {
		delete(favs, id)
	}
	return nil
}

// CartLines joins the user's cart against the product catalog.
func (s *Store) CartLines(userID int) []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]models.CartLine, 0)
	for productID, quantity := range s.carts[userID] {
		product, ok := s.products[productID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{Product: product, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Product.ID < lines[j].Product.ID })
	return lines
}

// AddToCart adds quantity units of the product to the user's cart,
// merging with an existing line for the same product.
func (s *Store) AddToCart(userID, productID, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	if s.carts[userID] == nil {
		s.carts[userID] = make(map[int]int)
	}
	s.carts[userID][productID] += quantity
	return nil
}

// SetCartQuantity sets the line's quantity; zero or less removes it.
func (s *Store) SetCartQuantity(userID, productID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if _, ok := cart[productID]; !ok {
		return ErrNotFound
	}
	if quantity <= 0 {
		delete(cart, productID)
		return nil
	}
	cart[productID] = quantity
	return nil
}

func (s *Store) RemoveFromCart(userID, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if _, ok := cart[productID]; !ok {
		return ErrNotFound
	}
	delete(cart, productID)
	return nil
}

func (s *Store) ClearCart(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}

func (s *Store) FavoriteProducts(userID int) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]models.Product, 0)
	for productID := range s.favorites[userID] {
		product, ok := s.products[productID]
		if !ok {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (s *Store) AddFavorite(userID, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	if s.favorites[userID] == nil {
		s.favorites[userID] = make(map[int]bool)
	}
	s.favorites[userID][productID] = true
	return nil
}

func (s *Store) RemoveFavorite(userID, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.favorites[userID][productID] {
		return ErrNotFound
	}
	delete(s.favorites[userID], productID)
	return nil
}

func sanitize(user models.User) models.User {
	user.Password = ""
	return user
}
