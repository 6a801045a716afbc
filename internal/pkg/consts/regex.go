package consts

const (
	ValidMSISDNPattern  = `^254[17]\d{8}$`
	LocalMSISDNPattern  = `^0[17]\d{8}$`
	NationalIDPattern   = `^\d{8,}$`
	AlphaSpacePattern   = `^[a-zA-Z\s]+$`
	DateOfBirthLayout   = "2006-01-02"
	MinimumApplicantAge = 18
	KenyaCountryCode    = "254"
)
