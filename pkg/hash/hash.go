package hash

import "golang.org/x/crypto/bcrypt"

const Cost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, Cost)
}

// HashPasswordCost lets tests trade strength for speed.
func HashPasswordCost(password string, cost int) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
