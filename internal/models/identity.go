package models

// Identity describes who owns the active local namespace.
type Identity struct {
	UserID string `json:"user_id"`
	Guest  bool   `json:"guest"`
}

// IsZero reports whether no identity has been established yet.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// Namespace возвращает префикс ключей локального хранилища для identity.
// Гостевые и пользовательские пространства не пересекаются даже при совпадении ID.
func (i Identity) Namespace() string {
	if i.Guest {
		return "guest:" + i.UserID + ":"
	}
	return "user:" + i.UserID + ":"
}

// CanSync reports whether records of this identity are mirrored to the cloud.
func (i Identity) CanSync() bool {
	return !i.IsZero() && !i.Guest
}
