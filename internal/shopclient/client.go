// Package shopclient はストアフロントAPIのクライアント。
// カートとお気に入りのローカルコピーを持ち、変更のたびにサーバーの
// 一覧を取り直して正とする。
package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// 未ログインで購入系の操作をしたときに返す。呼び出し側は
// これを見てログイン画面へ誘導する。
var ErrSignInRequired = errors.New("sign in required")

type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unloaded"
	}
}

type CartItem struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"productId"`
	ColorVariantID *int64 `json:"colorVariantId"`
	Quantity       int64  `json:"quantity"`
}

type Favorite struct {
	ProductID int64 `json:"productId"`
}

type AppliedPromocode struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
}

// Snapshot は取得時点の状態のコピー。以後clientが動いても変わらない。
type Snapshot struct {
	Phase     Phase
	CartItems []CartItem
	Favorites []Favorite
	Promocode *AppliedPromocode
}

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	hc      *http.Client

	mu        sync.Mutex
	phase     Phase
	token     string
	cart      []CartItem
	favorites []Favorite
	promocode *AppliedPromocode
}

// DI
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		hc:      hc,
		phase:   PhaseUnloaded,
	}
}

type loginResponse struct {
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
}

// SignIn はログインしてカートとお気に入りを並行で取り込む。
// 成功するとReadyになる。
func (c *Client) SignIn(ctx context.Context, email string, password string) (Snapshot, error) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.mu.Unlock()

	var lr loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &lr)
	if err != nil {
		c.mu.Lock()
		c.phase = PhaseUnloaded
		c.mu.Unlock()
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.token = lr.Token.AccessToken
	c.mu.Unlock()

	var (
		wg      sync.WaitGroup
		cart    []CartItem
		favs    []Favorite
		cartErr error
		favErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cartErr = c.do(ctx, http.MethodGet, "/cart", nil, &cart)
	}()
	go func() {
		defer wg.Done()
		favErr = c.do(ctx, http.MethodGet, "/favorites", nil, &favs)
	}()
	wg.Wait()

	if cartErr != nil || favErr != nil {
		c.mu.Lock()
		c.phase = PhaseUnloaded
		c.token = ""
		c.mu.Unlock()
		if cartErr != nil {
			return Snapshot{}, cartErr
		}
		return Snapshot{}, favErr
	}

	c.mu.Lock()
	c.cart = cart
	c.favorites = favs
	c.phase = PhaseReady
	c.mu.Unlock()

	return c.snapshot(), nil
}

// SignOut はローカル状態を消すだけ。サーバーは呼ばない。
// 空のReadyに戻るので、呼び出し側は空のカートとしてそのまま描画できる。
func (c *Client) SignOut() Snapshot {
	c.mu.Lock()
	c.token = ""
	c.cart = nil
	c.favorites = nil
	c.promocode = nil
	c.phase = PhaseReady
	c.mu.Unlock()

	return c.snapshot()
}

func (c *Client) AddToCart(ctx context.Context, productID int64, colorVariantID *int64, quantity int64) (Snapshot, error) {
	if !c.signedIn() {
		return Snapshot{}, ErrSignInRequired
	}

	body := map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	}
	if colorVariantID != nil {
		body["color_variant_id"] = *colorVariantID
	}

	var cart []CartItem
	if err := c.do(ctx, http.MethodPost, "/cart", body, &cart); err != nil {
		return Snapshot{}, err
	}

	c.setCart(cart)
	return c.snapshot(), nil
}

func (c *Client) UpdateCartItemQuantity(ctx context.Context, productID int64, quantity int64) (Snapshot, error) {
	if !c.signedIn() {
		return Snapshot{}, ErrSignInRequired
	}

	var cart []CartItem
	path := fmt.Sprintf("/cart/%d", productID)
	if err := c.do(ctx, http.MethodPatch, path, map[string]int64{"quantity": quantity}, &cart); err != nil {
		return Snapshot{}, err
	}

	c.setCart(cart)
	return c.snapshot(), nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID int64) (Snapshot, error) {
	if !c.signedIn() {
		return Snapshot{}, ErrSignInRequired
	}

	var cart []CartItem
	path := fmt.Sprintf("/cart/%d", productID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &cart); err != nil {
		return Snapshot{}, err
	}

	c.setCart(cart)
	return c.snapshot(), nil
}

type toggleResponse struct {
	Favorited bool `json:"favorited"`
}

func (c *Client) ToggleFavorite(ctx context.Context, productID int64) (Snapshot, error) {
	if !c.signedIn() {
		return Snapshot{}, ErrSignInRequired
	}

	var tr toggleResponse
	body := map[string]int64{"product_id": productID}
	if err := c.do(ctx, http.MethodPost, "/favorites", body, &tr); err != nil {
		return Snapshot{}, err
	}

	//トグル後の正は一覧を取り直して決める
	var favs []Favorite
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, &favs); err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.favorites = favs
	c.mu.Unlock()

	return c.snapshot(), nil
}

// ApplyPromocode はサーバーでコードを検証して適用する。
func (c *Client) ApplyPromocode(ctx context.Context, code string) (Snapshot, error) {
	var res AppliedPromocode
	err := c.do(ctx, http.MethodPost, "/promocodes/validate", map[string]string{"code": code}, &res)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.promocode = &res
	c.mu.Unlock()

	return c.snapshot(), nil
}

// ClearPromocode はローカルで外すだけ（使用カウントは戻らない）。
func (c *Client) ClearPromocode() Snapshot {
	c.mu.Lock()
	c.promocode = nil
	c.mu.Unlock()

	return c.snapshot()
}

func (c *Client) IsInCart(productID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.cart {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (c *Client) IsInFavorites(productID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.favorites {
		if f.ProductID == productID {
			return true
		}
	}
	return false
}

// CartItemsCount は数量の合計（行数ではない）。
func (c *Client) CartItemsCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for _, it := range c.cart {
		n += it.Quantity
	}
	return n
}

func (c *Client) FavoritesCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.favorites)
}

func (c *Client) Snapshot() Snapshot {
	return c.snapshot()
}

func (c *Client) signedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token != ""
}

func (c *Client) setCart(cart []CartItem) {
	c.mu.Lock()
	c.cart = cart
	c.mu.Unlock()
}

func (c *Client) snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{Phase: c.phase}

	s.CartItems = make([]CartItem, len(c.cart))
	copy(s.CartItems, c.cart)

	s.Favorites = make([]Favorite, len(c.favorites))
	copy(s.Favorites, c.favorites)

	if c.promocode != nil {
		p := *c.promocode
		s.Promocode = &p
	}

	return s
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var er struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&er)
		return &APIError{Status: res.StatusCode, Message: er.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
