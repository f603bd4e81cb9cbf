package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/oauth"
	"drone-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== REPOSITORY FAKES ====================

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, role entity.UserRole) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[user.ID] = *user
	return nil
}

type fakeDroneRepo struct {
	mu     sync.Mutex
	drones map[uuid.UUID]entity.Drone
}

func (f *fakeDroneRepo) Create(_ context.Context, drone *entity.Drone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.drones {
		if d.SerialNumber == drone.SerialNumber {
			return repository.ErrDuplicate
		}
	}
	f.drones[drone.ID] = *drone
	return nil
}

func (f *fakeDroneRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.drones[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeDroneRepo) FindBySerial(_ context.Context, serial string) (*entity.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.drones {
		if d.SerialNumber == serial {
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeDroneRepo) matching(filter entity.DroneFilter) []*entity.Drone {
	var out []*entity.Drone
	for _, d := range f.drones {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out
}

func (f *fakeDroneRepo) FindAll(_ context.Context, filter entity.DroneFilter, limit, offset int) ([]*entity.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.matching(filter), limit, offset), nil
}

func (f *fakeDroneRepo) Count(_ context.Context, filter entity.DroneFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter))), nil
}

func (f *fakeDroneRepo) CountByStatus(_ context.Context) (map[entity.DroneStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[entity.DroneStatus]int64)
	for _, d := range f.drones {
		out[d.Status]++
	}
	return out, nil
}

func (f *fakeDroneRepo) FindAvailable(_ context.Context, minWeight float64) ([]*entity.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Drone
	for _, d := range f.matching(entity.DroneFilter{}) {
		if d.CanCarry(minWeight) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDroneRepo) Update(_ context.Context, drone *entity.Drone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drones[drone.ID]; !ok {
		return repository.ErrNotFound
	}
	f.drones[drone.ID] = *drone
	return nil
}

func (f *fakeDroneRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.DroneStatus) (*entity.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drones[id]
	if !ok {
		return nil, nil
	}
	d.Status = status
	f.drones[id] = d
	return &d, nil
}

func (f *fakeDroneRepo) UpdateTelemetry(_ context.Context, update repository.TelemetryUpdate) (*entity.Drone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, d := range f.drones {
		if d.SerialNumber != update.SerialNumber {
			continue
		}
		d.Latitude = update.Latitude
		d.Longitude = update.Longitude
		if update.BatteryCapacity != nil {
			d.BatteryCapacity = *update.BatteryCapacity
		}
		if update.Status != nil {
			d.Status = *update.Status
		}
		f.drones[id] = d
		return &d, nil
	}
	return nil, nil
}

func (f *fakeDroneRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drones[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.drones, id)
	return nil
}

func (f *fakeDroneRepo) setStatus(id uuid.UUID, status entity.DroneStatus) {
	d := f.drones[id]
	d.Status = status
	f.drones[id] = d
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]entity.Order
	drones *fakeDroneRepo

	// lookup counters for the active-drone listing
	inFlightQueries      int
	inFlightDroneQueries int
}

func cloneOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	o.StatusHistory = append([]entity.StatusEntry(nil), o.StatusHistory...)
	return o
}

func (f *fakeOrderRepo) Create(_ context.Context, order *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		o = cloneOrder(o)
		return &o, nil
	}
	return nil, nil
}

func (f *fakeOrderRepo) matching(filter entity.OrderFilter) []*entity.Order {
	var out []*entity.Order
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, filter.CustomerEmail) {
			continue
		}
		o = cloneOrder(o)
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeOrderRepo) FindAll(_ context.Context, filter entity.OrderFilter, limit, offset int) ([]*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.matching(filter), limit, offset), nil
}

func (f *fakeOrderRepo) Count(_ context.Context, filter entity.OrderFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter))), nil
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context) (map[entity.OrderStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[entity.OrderStatus]int64)
	for _, o := range f.orders {
		out[o.Status]++
	}
	return out, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) FindInFlight(_ context.Context) (map[uuid.UUID]*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlightQueries++
	out := make(map[uuid.UUID]*entity.Order)
	for _, o := range f.orders {
		if o.AssignedDroneID != nil &&
			(o.Status == entity.OrderStatusAssigned || o.Status == entity.OrderStatusInTransit) {
			o = cloneOrder(o)
			out[*o.AssignedDroneID] = &o
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) FindInFlightByDrone(_ context.Context, droneID uuid.UUID) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlightDroneQueries++
	for _, o := range f.orders {
		if o.AssignedDroneID != nil && *o.AssignedDroneID == droneID &&
			(o.Status == entity.OrderStatusAssigned || o.Status == entity.OrderStatusInTransit) {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) save(order *entity.Order, from entity.OrderStatus) error {
	stored, ok := f.orders[order.ID]
	if !ok || stored.Status != from {
		return repository.ErrConflict
	}
	f.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (f *fakeOrderRepo) Save(_ context.Context, order *entity.Order, from entity.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(order, from)
}

func (f *fakeOrderRepo) SaveWithDrone(_ context.Context, order *entity.Order, from entity.OrderStatus, droneStatus entity.DroneStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.save(order, from); err != nil {
		return err
	}
	if order.AssignedDroneID != nil {
		f.drones.mu.Lock()
		f.drones.setStatus(*order.AssignedDroneID, droneStatus)
		f.drones.mu.Unlock()
	}
	return nil
}

func (f *fakeOrderRepo) AssignDrone(_ context.Context, order *entity.Order, drone *entity.Drone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drones.mu.Lock()
	defer f.drones.mu.Unlock()

	stored, ok := f.drones.drones[drone.ID]
	if !ok || !stored.CanCarry(order.TotalWeight) {
		return repository.ErrConflict
	}
	if err := f.save(order, entity.OrderStatusApproved); err != nil {
		return err
	}
	f.drones.setStatus(drone.ID, entity.DroneStatusDelivering)
	drone.Status = entity.DroneStatusDelivering
	return nil
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (f *fakeTokenRepo) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeTokenRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeTelemetryRepo struct {
	mu    sync.Mutex
	items map[string]entity.Telemetry
}

func (f *fakeTelemetryRepo) Save(_ context.Context, t *entity.Telemetry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[t.SerialNumber] = *t
	return nil
}

func (f *fakeTelemetryRepo) All(_ context.Context) ([]*entity.Telemetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Telemetry
	for _, t := range f.items {
		t := t
		out = append(out, &t)
	}
	return out, nil
}

type fakeSimulationRepo struct {
	sim *entity.Simulation
}

func (f *fakeSimulationRepo) Save(_ context.Context, sim *entity.Simulation) error {
	f.sim = sim
	return nil
}

func (f *fakeSimulationRepo) Get(_ context.Context) (*entity.Simulation, error) {
	return f.sim, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== COLLABORATOR FAKES ====================

type recordingPublisher struct {
	mu         sync.Mutex
	statuses   []entity.OrderStatusChanged
	dispatches []entity.DroneDispatch
}

func (p *recordingPublisher) PublishOrderStatus(_ context.Context, event *entity.OrderStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, *event)
	return nil
}

func (p *recordingPublisher) PublishDispatch(_ context.Context, event *entity.DroneDispatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dispatches = append(p.dispatches, *event)
	return nil
}

type broadcast struct {
	event string
	data  any
}

type recordingHub struct {
	mu   sync.Mutex
	sent []broadcast
}

func (h *recordingHub) Broadcast(event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, broadcast{event: event, data: data})
}

type fakeProvider struct {
	enabled bool
	user    *oauth.GoogleUser
	err     error
}

func (p *fakeProvider) Enabled() bool { return p.enabled }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(context.Context, string) (*oauth.GoogleUser, error) {
	return p.user, p.err
}

// ==================== FIXTURE ====================

type fixture struct {
	users      *fakeUserRepo
	drones     *fakeDroneRepo
	orders     *fakeOrderRepo
	tokens     *fakeTokenRepo
	telemetry  *fakeTelemetryRepo
	simulation *fakeSimulationRepo
	events     *recordingPublisher
	hub        *recordingHub
	provider   *fakeProvider
	config     *utils.Config
	service    *Service
}

func newFixture() *fixture {
	f := &fixture{
		users:      &fakeUserRepo{users: map[uuid.UUID]entity.User{}},
		drones:     &fakeDroneRepo{drones: map[uuid.UUID]entity.Drone{}},
		tokens:     &fakeTokenRepo{revoked: map[string]time.Duration{}},
		telemetry:  &fakeTelemetryRepo{items: map[string]entity.Telemetry{}},
		simulation: &fakeSimulationRepo{},
		events:     &recordingPublisher{},
		hub:        &recordingHub{},
		provider:   &fakeProvider{},
		config: &utils.Config{
			JWT:   utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
			Admin: utils.AdminConfig{Name: "Admin User"},
		},
	}
	f.orders = &fakeOrderRepo{orders: map[uuid.UUID]entity.Order{}, drones: f.drones}

	repo := &repository.Repository{
		User:       f.users,
		Drone:      f.drones,
		Order:      f.orders,
		Token:      f.tokens,
		Telemetry:  f.telemetry,
		Simulation: f.simulation,
	}
	f.service = NewService(repo, f.events, f.hub, f.provider, f.config, zap.NewNop())
	return f
}

func (f *fixture) addUser(name, email string, role entity.UserRole) *entity.User {
	now := time.Now()
	u := entity.User{
		Base:  entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:  name,
		Email: email,
		Role:  role,
	}
	f.users.users[u.ID] = u
	return &u
}

func (f *fixture) addDrone(serial string, weightLimit float64, status entity.DroneStatus) *entity.Drone {
	now := time.Now()
	d := entity.Drone{
		Base:            entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:            "Drone " + serial,
		Model:           "DX-1",
		SerialNumber:    serial,
		BatteryCapacity: 100,
		WeightLimit:     weightLimit,
		Status:          status,
	}
	f.drones.drones[d.ID] = d
	return &d
}

func (f *fixture) addOrder(customer *entity.User, weight float64, status entity.OrderStatus) *entity.Order {
	now := time.Now()
	o := entity.Order{
		Base:            entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CustomerID:      &customer.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		Items:           []entity.OrderItem{{Name: "Parcel", Quantity: 1}},
		TotalWeight:     weight,
		PickupAddress:   "Warehouse 1",
		DeliveryAddress: "12 Main St",
		Status:          status,
		StatusHistory:   []entity.StatusEntry{{Status: status, Timestamp: now}},
	}
	f.orders.orders[o.ID] = o
	return &o
}

func actorOf(u *entity.User) Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}
