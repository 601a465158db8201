package paymentconfig

type CreateConfigRequest struct {
	Method        string `json:"method" validate:"oneof=PIX"`
	Provider      string `json:"provider" validate:"oneof=local openpix"`
	PixKey        string `json:"pix_key"`
	MerchantName  string `json:"merchant_name"`
	MerchantCity  string `json:"merchant_city"`
	APIKey        string `json:"api_key"`
	WebhookSecret string `json:"webhook_secret"`
	Sandbox       bool   `json:"sandbox"`
}

type GetManyConfigRequest struct {
	Page int64 `validate:"required,gte=1"`
	Size int64 `validate:"required,gte=1,lte=100"`
}
