package user

// Record holds one user's preferences: default currencies for quick
// conversions and a favorites list of canonical currency identifiers.
type Record struct {
	defaultFiat   string
	defaultCrypto string
	Favorites     []string
}

func (r *Record) DefaultFiat(def string) string {
	if r.defaultFiat != "" {
		return r.defaultFiat
	}
	return def
}

func (r *Record) SetDefaultFiat(code string) {
	r.defaultFiat = code
}

func (r *Record) DefaultCrypto(def string) string {
	if r.defaultCrypto != "" {
		return r.defaultCrypto
	}
	return def
}

func (r *Record) SetDefaultCrypto(id string) {
	r.defaultCrypto = id
}

// ToggleFavorite adds the identifier to the favorites or removes it when
// already present. Reports whether the identifier is a favorite afterwards.
func (r *Record) ToggleFavorite(id string) bool {
	for i, fav := range r.Favorites {
		if fav == id {
			r.Favorites = append(r.Favorites[:i], r.Favorites[i+1:]...)
			return false
		}
	}
	r.Favorites = append(r.Favorites, id)
	return true
}
