package dto

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterNasabahDTO struct {
	Nama     string  `json:"nama" validate:"required"`
	Username string  `json:"username" validate:"required,min=4"`
	Password string  `json:"password" validate:"required,min=8"`
	Telepon  *string `json:"telepon,omitempty"`
	Alamat   *string `json:"alamat,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Nama        string `json:"nama"`
}
