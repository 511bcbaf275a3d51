package shopclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"app/internal/shopclient"

	"github.com/stretchr/testify/assert"
)

// インメモリのAPIサーバーもどき。カートとお気に入りを握っていて、
// 本物と同じく変更系は更新後の一覧を返す。
type fakeAPI struct {
	mu        sync.Mutex
	cart      []shopclient.CartItem
	favorites []shopclient.Favorite
	nextID    int64

	loginFails bool
	cartFails  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 1}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if f.loginFails {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": map[string]string{"access_token": "test-token"},
		})
	})

	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		if f.cartFails {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "db error"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.cart)
	})

	mux.HandleFunc("POST /cart", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		merged := false
		for i := range f.cart {
			if f.cart[i].ProductID == req.ProductID {
				f.cart[i].Quantity += req.Quantity
				merged = true
				break
			}
		}
		if !merged {
			f.cart = append(f.cart, shopclient.CartItem{
				ID: f.nextID, ProductID: req.ProductID, Quantity: req.Quantity,
			})
			f.nextID++
		}
		out := append([]shopclient.CartItem(nil), f.cart...)
		f.mu.Unlock()

		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("PATCH /cart/{product_id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		for i := range f.cart {
			f.cart[i].Quantity = req.Quantity
		}
		out := append([]shopclient.CartItem(nil), f.cart...)
		f.mu.Unlock()

		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("DELETE /cart/{product_id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.cart = nil
		out := []shopclient.CartItem{}
		f.mu.Unlock()

		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.favorites)
	})

	mux.HandleFunc("POST /favorites", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		//ここでは1商品分だけ扱えれば十分
		if len(f.favorites) == 0 {
			f.favorites = []shopclient.Favorite{{ProductID: 10}}
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]bool{"favorited": true})
			return
		}
		f.favorites = nil
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{"favorited": false})
	})

	mux.HandleFunc("POST /promocodes/validate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "SALE20" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		json.NewEncoder(w).Encode(shopclient.AppliedPromocode{Code: "SALE20", Discount: 20})
	})

	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *shopclient.Client {
	t.Helper()

	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return shopclient.NewClient(srv.URL, srv.Client())
}

func signIn(t *testing.T, c *shopclient.Client) shopclient.Snapshot {
	t.Helper()

	s, err := c.SignIn(context.Background(), "ivan@example.com", "password123")
	assert.NoError(t, err)
	return s
}

func TestClient_SignIn_LoadsCartAndFavorites(t *testing.T) {
	api := newFakeAPI()
	api.cart = []shopclient.CartItem{{ID: 1, ProductID: 10, Quantity: 2}}
	api.favorites = []shopclient.Favorite{{ProductID: 11}}

	c := newTestClient(t, api)

	s := signIn(t, c)
	assert.Equal(t, shopclient.PhaseReady, s.Phase)
	assert.Len(t, s.CartItems, 1)
	assert.Len(t, s.Favorites, 1)
	assert.True(t, c.IsInCart(10))
	assert.True(t, c.IsInFavorites(11))
}

func TestClient_SignIn_BadCredentials(t *testing.T) {
	api := newFakeAPI()
	api.loginFails = true

	c := newTestClient(t, api)

	_, err := c.SignIn(context.Background(), "ivan@example.com", "wrong")
	var apiErr *shopclient.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, shopclient.PhaseUnloaded, c.Snapshot().Phase)
}

// 取り込みの片方が失敗したらUnloadedへ戻す。中途半端なReadyにしない。
func TestClient_SignIn_PartialLoadResets(t *testing.T) {
	api := newFakeAPI()
	api.cartFails = true

	c := newTestClient(t, api)

	_, err := c.SignIn(context.Background(), "ivan@example.com", "password123")
	assert.Error(t, err)
	assert.Equal(t, shopclient.PhaseUnloaded, c.Snapshot().Phase)

	//tokenも残っていないので変更系は弾かれる
	_, err = c.AddToCart(context.Background(), 10, nil, 1)
	assert.ErrorIs(t, err, shopclient.ErrSignInRequired)
}

func TestClient_MutationsRequireSignIn(t *testing.T) {
	c := newTestClient(t, newFakeAPI())

	_, err := c.AddToCart(context.Background(), 10, nil, 1)
	assert.ErrorIs(t, err, shopclient.ErrSignInRequired)

	_, err = c.UpdateCartItemQuantity(context.Background(), 10, 2)
	assert.ErrorIs(t, err, shopclient.ErrSignInRequired)

	_, err = c.RemoveFromCart(context.Background(), 10)
	assert.ErrorIs(t, err, shopclient.ErrSignInRequired)

	_, err = c.ToggleFavorite(context.Background(), 10)
	assert.ErrorIs(t, err, shopclient.ErrSignInRequired)
}

func TestClient_AddToCart_UpdatesSnapshot(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api)
	signIn(t, c)

	s, err := c.AddToCart(context.Background(), 10, nil, 2)
	assert.NoError(t, err)
	assert.Len(t, s.CartItems, 1)
	assert.Equal(t, int64(2), c.CartItemsCount())

	//同じ商品を足すと数量が増える
	s, err = c.AddToCart(context.Background(), 10, nil, 1)
	assert.NoError(t, err)
	assert.Len(t, s.CartItems, 1)
	assert.Equal(t, int64(3), c.CartItemsCount())
}

func TestClient_RemoveFromCart(t *testing.T) {
	api := newFakeAPI()
	api.cart = []shopclient.CartItem{{ID: 1, ProductID: 10, Quantity: 2}}
	c := newTestClient(t, api)
	signIn(t, c)

	s, err := c.RemoveFromCart(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, s.CartItems)
	assert.False(t, c.IsInCart(10))
}

func TestClient_ToggleFavorite_RefetchesList(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api)
	signIn(t, c)

	s, err := c.ToggleFavorite(context.Background(), 10)
	assert.NoError(t, err)
	assert.True(t, c.IsInFavorites(10))
	assert.Equal(t, 1, c.FavoritesCount())
	assert.Len(t, s.Favorites, 1)

	s, err = c.ToggleFavorite(context.Background(), 10)
	assert.NoError(t, err)
	assert.False(t, c.IsInFavorites(10))
	assert.Empty(t, s.Favorites)
}

func TestClient_ApplyPromocode(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api)
	signIn(t, c)

	s, err := c.ApplyPromocode(context.Background(), "SALE20")
	assert.NoError(t, err)
	assert.NotNil(t, s.Promocode)
	assert.Equal(t, int64(20), s.Promocode.Discount)

	s = c.ClearPromocode()
	assert.Nil(t, s.Promocode)
}

func TestClient_ApplyPromocode_Invalid(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api)
	signIn(t, c)

	_, err := c.ApplyPromocode(context.Background(), "NOPE")
	var apiErr *shopclient.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

// サインアウト後は「空のReady」。Unloadedには戻らない。
func TestClient_SignOut_ResetsToEmptyReady(t *testing.T) {
	api := newFakeAPI()
	api.cart = []shopclient.CartItem{{ID: 1, ProductID: 10, Quantity: 2}}
	c := newTestClient(t, api)
	signIn(t, c)

	s := c.SignOut()
	assert.Equal(t, shopclient.PhaseReady, s.Phase)
	assert.Empty(t, s.CartItems)
	assert.Empty(t, s.Favorites)
	assert.Nil(t, s.Promocode)
	assert.Equal(t, int64(0), c.CartItemsCount())

	//セッションは無いので変更系は引き続き弾かれる
	_, err := c.AddToCart(context.Background(), 10, nil, 1)
	assert.ErrorIs(t, err, shopclient.ErrSignInRequired)
}

// Snapshotは取得時点のコピー。後からclientが動いても変わらない。
func TestClient_Snapshot_Immutable(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api)
	signIn(t, c)

	before := c.Snapshot()

	_, err := c.AddToCart(context.Background(), 10, nil, 1)
	assert.NoError(t, err)

	assert.Empty(t, before.CartItems)
	assert.Len(t, c.Snapshot().CartItems, 1)
}
