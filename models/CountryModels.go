package models

type Country struct {
	ID        int    `json:"id" example:"1"`
	Name      string `json:"name" example:"United Arab Emirates"`
	Code      string `json:"code" example:"AE"`
	PhoneCode string `json:"phone_code" example:"+971"`
}
