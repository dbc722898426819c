package service

// PasswordService hashes and checks login passwords with a slow, salted
// one-way hash.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
