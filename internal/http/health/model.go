package health

// Data is the health payload. Next is only reported by the counter service.
type Data struct {
	Status  string  `json:"status"         doc:"Always healthy while the process serves" example:"healthy"`
	Service string  `json:"service"        doc:"Service name"                             example:"counter"`
	Next    *uint64 `json:"next,omitempty" doc:"Next counter value, not consumed"         example:"1"`
}
