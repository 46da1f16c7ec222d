package core

type Services struct {
	Tenant  *TenantService
	Session *SessionService
}

func NewServices(db TxDB, defaults QuotaDefaults) *Services {
	return &Services{
		Tenant:  NewTenantService(db),
		Session: NewSessionService(db, defaults),
	}
}
