package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MemoryDB is a map-backed implementation of DB used by the service and
// ledger tests. Atomic takes a snapshot of every table and restores it when
// the callback fails, mirroring transactional rollback. Not safe for
// concurrent use.
type MemoryDB struct {
	users    map[uint]models.User
	wallets  map[uint]models.Wallet
	auctions map[uint]models.Auction
	bids     map[uint]models.Bid
	images   map[uint]models.AuctionImage
	txs      map[uint]models.WalletTransaction
	notifs   map[uint]models.Notification
	nextID   uint
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:    make(map[uint]models.User),
		wallets:  make(map[uint]models.Wallet),
		auctions: make(map[uint]models.Auction),
		bids:     make(map[uint]models.Bid),
		images:   make(map[uint]models.AuctionImage),
		txs:      make(map[uint]models.WalletTransaction),
		notifs:   make(map[uint]models.Notification),
	}
}

func (m *MemoryDB) Users() UserStore                 { return (*memUsers)(m) }
func (m *MemoryDB) Wallets() WalletStore             { return (*memWallets)(m) }
func (m *MemoryDB) Auctions() AuctionStore           { return (*memAuctions)(m) }
func (m *MemoryDB) Bids() BidStore                   { return (*memBids)(m) }
func (m *MemoryDB) Transactions() TransactionStore   { return (*memTxs)(m) }
func (m *MemoryDB) Notifications() NotificationStore { return (*memNotifs)(m) }

func (m *MemoryDB) Atomic(ctx context.Context, fn func(Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	users    map[uint]models.User
	wallets  map[uint]models.Wallet
	auctions map[uint]models.Auction
	bids     map[uint]models.Bid
	images   map[uint]models.AuctionImage
	txs      map[uint]models.WalletTransaction
	notifs   map[uint]models.Notification
	nextID   uint
}

func (m *MemoryDB) snapshot() memSnapshot {
	return memSnapshot{
		users:    copyMap(m.users),
		wallets:  copyMap(m.wallets),
		auctions: copyMap(m.auctions),
		bids:     copyMap(m.bids),
		images:   copyMap(m.images),
		txs:      copyMap(m.txs),
		notifs:   copyMap(m.notifs),
		nextID:   m.nextID,
	}
}

func (m *MemoryDB) restore(s memSnapshot) {
	m.users, m.wallets, m.auctions = s.users, s.wallets, s.auctions
	m.bids, m.images, m.txs, m.notifs = s.bids, s.images, s.txs, s.notifs
	m.nextID = s.nextID
}

func copyMap[V any](src map[uint]V) map[uint]V {
	dst := make(map[uint]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *MemoryDB) id() uint {
	m.nextID++
	return m.nextID
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func deleted(d gorm.DeletedAt) bool { return d.Valid }

func softDeleteMark() gorm.DeletedAt {
	return gorm.DeletedAt{Time: time.Now(), Valid: true}
}

// --- users ---

type memUsers MemoryDB

func (m *memUsers) GetByID(id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok || deleted(u.DeletedAt) {
		return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email && !deleted(u.DeletedAt) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

func (m *memUsers) GetByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username && !deleted(u.DeletedAt) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, apperrors.ErrNotFound)
}

func (m *memUsers) Create(u *models.User) error {
	u.ID = (*MemoryDB)(m).id()
	u.CreatedAt = stamp(u.CreatedAt)
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) Update(u *models.User) error {
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) SoftDelete(id uint) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	u.DeletedAt = softDeleteMark()
	m.users[id] = u
	return nil
}

// --- wallets ---

type memWallets MemoryDB

func (m *memWallets) GetByUserID(userID uint) (*models.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID == userID && !deleted(w.DeletedAt) {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("wallet for user %d: %w", userID, apperrors.ErrNotFound)
}

func (m *memWallets) GetByUserIDForUpdate(userID uint) (*models.Wallet, error) {
	return m.GetByUserID(userID)
}

func (m *memWallets) GetOrCreate(userID uint) (*models.Wallet, error) {
	if w, err := m.GetByUserID(userID); err == nil {
		return w, nil
	}
	w := models.Wallet{
		ID:            (*MemoryDB)(m).id(),
		UserID:        userID,
		Balance:       decimal.Zero,
		FrozenBalance: decimal.Zero,
		CreatedAt:     time.Now(),
	}
	m.wallets[w.ID] = w
	return &w, nil
}

func (m *memWallets) Update(w *models.Wallet) error {
	m.wallets[w.ID] = *w
	return nil
}

// --- auctions ---

type memAuctions MemoryDB

func (m *memAuctions) GetByID(id uint) (*models.Auction, error) {
	a, ok := m.auctions[id]
	if !ok || deleted(a.DeletedAt) {
		return nil, fmt.Errorf("auction %d: %w", id, apperrors.ErrNotFound)
	}
	a.Bids, a.Images = nil, nil
	return &a, nil
}

func (m *memAuctions) GetWithBids(id uint) (*models.Auction, error) {
	a, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	a.Bids = (*memBids)(m).liveByAuction(id)
	for _, img := range m.images {
		if img.AuctionID == id && !deleted(img.DeletedAt) {
			a.Images = append(a.Images, img)
		}
	}
	sort.Slice(a.Images, func(i, j int) bool { return a.Images[i].ID < a.Images[j].ID })
	return a, nil
}

func (m *memAuctions) ListDue(now time.Time) ([]models.Auction, error) {
	var list []models.Auction
	for _, a := range m.auctions {
		if deleted(a.DeletedAt) || a.Status != domain.AuctionStatusActive || a.EndTime.After(now) {
			continue
		}
		a.Bids = (*memBids)(m).liveByAuction(a.ID)
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EndTime.Before(list[j].EndTime) })
	return list, nil
}

func (m *memAuctions) ListBySeller(sellerID uint) ([]models.Auction, error) {
	var list []models.Auction
	for _, a := range m.auctions {
		if a.SellerID == sellerID && !deleted(a.DeletedAt) {
			a.Bids, a.Images = nil, nil
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memAuctions) List(status string, page, limit int) ([]models.Auction, int64, error) {
	var list []models.Auction
	for _, a := range m.auctions {
		if deleted(a.DeletedAt) {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EndTime.Before(list[j].EndTime) })
	total := int64(len(list))
	start := (page - 1) * limit
	if start > len(list) {
		start = len(list)
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], total, nil
}

func (m *memAuctions) Create(a *models.Auction) error {
	a.ID = (*MemoryDB)(m).id()
	a.CreatedAt = stamp(a.CreatedAt)
	m.auctions[a.ID] = *a
	return nil
}

func (m *memAuctions) Update(a *models.Auction) error {
	stored := *a
	stored.Bids, stored.Images = nil, nil
	m.auctions[a.ID] = stored
	return nil
}

func (m *memAuctions) SoftDelete(id uint) error {
	a, ok := m.auctions[id]
	if !ok {
		return fmt.Errorf("auction %d: %w", id, apperrors.ErrNotFound)
	}
	a.DeletedAt = softDeleteMark()
	m.auctions[id] = a
	return nil
}

func (m *memAuctions) HardDelete(id uint) error {
	for bidID, b := range m.bids {
		if b.AuctionID == id {
			delete(m.bids, bidID)
		}
	}
	for imgID, img := range m.images {
		if img.AuctionID == id {
			delete(m.images, imgID)
		}
	}
	delete(m.auctions, id)
	return nil
}

func (m *memAuctions) AddImage(img *models.AuctionImage) error {
	if _, ok := m.auctions[img.AuctionID]; !ok {
		return fmt.Errorf("auction %d: %w", img.AuctionID, apperrors.ErrNotFound)
	}
	img.ID = (*MemoryDB)(m).id()
	img.CreatedAt = stamp(img.CreatedAt)
	m.images[img.ID] = *img
	return nil
}

// --- bids ---

type memBids MemoryDB

func (m *memBids) liveByAuction(auctionID uint) []models.Bid {
	var list []models.Bid
	for _, b := range m.bids {
		if b.AuctionID == auctionID && !deleted(b.DeletedAt) {
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (m *memBids) GetByAuctionAndBidder(auctionID, bidderID uint) (*models.Bid, error) {
	for _, b := range m.bids {
		if b.AuctionID == auctionID && b.BidderID == bidderID && !deleted(b.DeletedAt) {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("bid on auction %d by user %d: %w", auctionID, bidderID, apperrors.ErrNotFound)
}

func (m *memBids) ListByAuction(auctionID uint) ([]models.Bid, error) {
	list := m.liveByAuction(auctionID)
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Amount.Equal(list[j].Amount) {
			return list[i].Amount.GreaterThan(list[j].Amount)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (m *memBids) ListByBidder(bidderID uint) ([]models.Bid, error) {
	var list []models.Bid
	for _, b := range m.bids {
		if b.BidderID == bidderID && !deleted(b.DeletedAt) {
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *memBids) Create(b *models.Bid) error {
	b.ID = (*MemoryDB)(m).id()
	b.CreatedAt = stamp(b.CreatedAt)
	m.bids[b.ID] = *b
	return nil
}

func (m *memBids) Update(b *models.Bid) error {
	m.bids[b.ID] = *b
	return nil
}

func (m *memBids) SoftDelete(id uint) error {
	b, ok := m.bids[id]
	if !ok {
		return fmt.Errorf("bid %d: %w", id, apperrors.ErrNotFound)
	}
	b.DeletedAt = softDeleteMark()
	m.bids[id] = b
	return nil
}

// --- wallet transactions ---

type memTxs MemoryDB

func (m *memTxs) Create(t *models.WalletTransaction) error {
	t.ID = (*MemoryDB)(m).id()
	t.CreatedAt = stamp(t.CreatedAt)
	m.txs[t.ID] = *t
	return nil
}

func (m *memTxs) ListByWallet(walletID uint, limit, offset int) ([]models.WalletTransaction, int64, error) {
	var list []models.WalletTransaction
	for _, t := range m.txs {
		if t.WalletID == walletID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	total := int64(len(list))
	if offset > len(list) {
		offset = len(list)
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], total, nil
}

// --- notifications ---

type memNotifs MemoryDB

func (m *memNotifs) Create(n *models.Notification) error {
	n.ID = (*MemoryDB)(m).id()
	n.CreatedAt = stamp(n.CreatedAt)
	m.notifs[n.ID] = *n
	return nil
}

func (m *memNotifs) ListByUser(userID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	for _, n := range m.notifs {
		if n.UserID == userID && !deleted(n.DeletedAt) {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if offset > len(list) {
		offset = len(list)
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (m *memNotifs) MarkRead(id, userID uint) error {
	n, ok := m.notifs[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
	}
	n.Read = true
	m.notifs[id] = n
	return nil
}
