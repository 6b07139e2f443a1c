package conecta

// DefaultBaseURL is the production gateway host.
const DefaultBaseURL = "https://r4conecta.mibanco.com.ve"

// EndpointName identifies a gateway operation.
type EndpointName string

const (
	EndpointBCVRate                EndpointName = "bcv_rate"
	EndpointChange                 EndpointName = "change"
	EndpointC2PCharge              EndpointName = "c2p_charge"
	EndpointC2PReversal            EndpointName = "c2p_reversal"
	EndpointDispersion             EndpointName = "dispersion"
	EndpointGenerateOTP            EndpointName = "generate_otp"
	EndpointImmediateDebit         EndpointName = "immediate_debit"
	EndpointImmediateCredit        EndpointName = "immediate_credit"
	EndpointImmediateCreditAccount EndpointName = "immediate_credit_account"
	EndpointMandateByAccount       EndpointName = "mandate_account"
	EndpointMandateByPhone         EndpointName = "mandate_phone"
	EndpointOperationStatus        EndpointName = "operation_status"
)

// Endpoint binds an operation to its path and signature spec.
type Endpoint struct {
	Name      EndpointName
	Path      string
	Signature SignatureSpec
}

// endpointTable is the signature contract of the gateway. Field names refer
// to keys of the encoded JSON body, in the order they are concatenated.
var endpointTable = []Endpoint{
	{
		Name:      EndpointBCVRate,
		Path:      "/MBbcv",
		Signature: SignatureSpec{Fields: []string{"Fechavalor", "Moneda"}},
	},
	{
		Name:      EndpointChange,
		Path:      "/MBvuelto",
		Signature: SignatureSpec{Fields: []string{"TelefonoDestino", "Monto", "Banco", "Cedula"}},
	},
	{
		// The gateway expects a single leading space on this one.
		Name:      EndpointC2PCharge,
		Path:      "/MBc2p",
		Signature: SignatureSpec{Prefix: " ", Fields: []string{"TelefonoDestino", "Monto", "Banco", "Cedula"}},
	},
	{
		Name:      EndpointC2PReversal,
		Path:      "/MBanulacionC2P",
		Signature: SignatureSpec{Fields: []string{"Banco"}},
	},
	{
		Name:      EndpointDispersion,
		Path:      "/MBdispersion",
		Signature: SignatureSpec{Fields: []string{"monto", "fecha"}},
	},
	{
		Name:      EndpointGenerateOTP,
		Path:      "/GenerarOtp",
		Signature: SignatureSpec{Fields: []string{"Banco", "Monto", "Telefono", "Cedula"}},
	},
	{
		Name:      EndpointImmediateDebit,
		Path:      "/DebitoInmediato",
		Signature: SignatureSpec{Fields: []string{"Banco", "Cedula", "Telefono", "Monto", "OTP"}},
	},
	{
		Name:      EndpointImmediateCredit,
		Path:      "/CreditoInmediato",
		Signature: SignatureSpec{Fields: []string{"Banco", "Cedula", "Telefono", "Monto"}},
	},
	{
		Name:      EndpointImmediateCreditAccount,
		Path:      "/CICuentas",
		Signature: SignatureSpec{Fields: []string{"Cedula", "Cuenta", "Monto"}},
	},
	{
		Name:      EndpointMandateByAccount,
		Path:      "/TransferenciaOnline/DomiciliacionCNTA",
		Signature: SignatureSpec{Fields: []string{"cuenta"}},
	},
	{
		Name:      EndpointMandateByPhone,
		Path:      "/TransferenciaOnline/DomiciliacionCELE",
		Signature: SignatureSpec{Fields: []string{"telefono"}},
	},
	{
		Name:      EndpointOperationStatus,
		Path:      "/ConsultarOperaciones",
		Signature: SignatureSpec{Fields: []string{"Id"}},
	},
}

// Endpoints returns a copy of the endpoint table in declaration order.
func Endpoints() []Endpoint {
	out := make([]Endpoint, len(endpointTable))
	for i, e := range endpointTable {
		out[i] = e
		out[i].Signature.Fields = append([]string(nil), e.Signature.Fields...)
	}
	return out
}

// LookupEndpoint returns the endpoint registered under name.
func LookupEndpoint(name EndpointName) (Endpoint, bool) {
	for _, e := range endpointTable {
		if e.Name == name {
			return e, true
		}
	}
	return Endpoint{}, false
}

// EndpointByPath returns the endpoint served at path.
func EndpointByPath(path string) (Endpoint, bool) {
	for _, e := range endpointTable {
		if e.Path == path {
			return e, true
		}
	}
	return Endpoint{}, false
}

// MustEndpoint is like LookupEndpoint but panics on unknown names.
// It is meant for package-level wiring of the static table.
func MustEndpoint(name EndpointName) Endpoint {
	e, ok := LookupEndpoint(name)
	if !ok {
		panic("conecta: unknown endpoint " + string(name))
	}
	return e
}
