package ovh

// Boot ids shared by every dedicated server.
const (
	BootHardDisk = 1
	BootRescue   = 1122
)

// User is the account returned by /me.
type User struct {
	Nichandle    string `json:"nichandle"`
	Email        string `json:"email"`
	FirstName    string `json:"firstname"`
	Name         string `json:"name"`
	Organisation string `json:"organisation"`
	Country      string `json:"country"`
	Language     string `json:"language"`
}

// Application is an API application registered on the account.
type Application struct {
	ApplicationID  int    `json:"applicationId"`
	ApplicationKey string `json:"applicationKey"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Status         string `json:"status"`
}

// Server is a dedicated server.
type Server struct {
	Name            string `json:"name"`
	ServerID        int    `json:"serverId"`
	IP              string `json:"ip"`
	Reverse         string `json:"reverse"`
	BootID          int    `json:"bootId"`
	Datacenter      string `json:"datacenter"`
	Rack            string `json:"rack"`
	State           string `json:"state"`
	OS              string `json:"os"`
	CommercialRange string `json:"commercialRange"`
	LinkSpeed       int    `json:"linkSpeed"`
	Monitoring      bool   `json:"monitoring"`
	ProfessionalUse bool   `json:"professionalUse"`
	RescueMail      string `json:"rescueMail"`
}

// ServerUpdate holds the writable server fields. nil fields are omitted.
type ServerUpdate struct {
	BootID     *int    `json:"bootId,omitempty"`
	Monitoring *bool   `json:"monitoring,omitempty"`
	RescueMail *string `json:"rescueMail,omitempty"`
	State      *string `json:"state,omitempty"`
}

// BootOption is a boot configuration of a server.
type BootOption struct {
	BootID      int    `json:"bootId"`
	BootType    string `json:"bootType"`
	Description string `json:"description"`
	Kernel      string `json:"kernel"`
}

// NetworkInterface is a virtual network interface of a server.
type NetworkInterface struct {
	UUID                       string   `json:"uuid"`
	Name                       string   `json:"name"`
	Mode                       string   `json:"mode"`
	Enabled                    bool     `json:"enabled"`
	VRack                      string   `json:"vrack"`
	NetworkInterfaceController []string `json:"networkInterfaceController"`
}

// MACAddress returns the first controller MAC, if any.
func (n NetworkInterface) MACAddress() string {
	if len(n.NetworkInterfaceController) == 0 {
		return ""
	}
	return n.NetworkInterfaceController[0]
}

// Task is an asynchronous operation started by a mutating call.
type Task struct {
	TaskID    int    `json:"taskId"`
	Function  string `json:"function"`
	Status    string `json:"status"`
	Comment   string `json:"comment"`
	StartDate string `json:"startDate"`
	DoneDate  string `json:"doneDate"`
}

// Vrack is a private network.
type Vrack struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IP is an IP block as returned by /ip/{block}.
type IP struct {
	IP          string `json:"ip"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Country     string `json:"country"`
	RoutedTo    struct {
		ServiceName string `json:"serviceName"`
	} `json:"routedTo"`
	CanBeTerminated bool `json:"canBeTerminated"`
}

// IPReverse is the reverse DNS of one address.
type IPReverse struct {
	IPReverse string `json:"ipReverse"`
	Reverse   string `json:"reverse"`
}

// IPTask is returned by /ip/{block}/move.
type IPTask struct {
	TaskID      int    `json:"taskId"`
	Action      string `json:"action"`
	Status      string `json:"status"`
	Destination string `json:"destination"`
}

// ServiceInfos is the billing view of a service.
type ServiceInfos struct {
	ServiceID             int      `json:"serviceId"`
	Domain                string   `json:"domain"`
	Status                string   `json:"status"`
	Creation              string   `json:"creation"`
	Expiration            string   `json:"expiration"`
	EngagedUpTo           string   `json:"engagedUpTo"`
	ContactAdmin          string   `json:"contactAdmin"`
	ContactBilling        string   `json:"contactBilling"`
	ContactTech           string   `json:"contactTech"`
	PossibleRenewPeriod   []int    `json:"possibleRenewPeriod"`
	CanDeleteAtExpiration bool     `json:"canDeleteAtExpiration"`
	Renew                 *Renewal `json:"renew,omitempty"`
}

// Renewal is the renewal policy of a service.
type Renewal struct {
	Automatic          bool `json:"automatic"`
	DeleteAtExpiration bool `json:"deleteAtExpiration"`
	Forced             bool `json:"forced"`
	ManualPayment      bool `json:"manualPayment"`
	Period             int  `json:"period"`
}

// IPMIAccess is the access data of an IPMI session.
type IPMIAccess struct {
	Expiration string `json:"expiration"`
	Value      string `json:"value"`
}

// Ticket is a support ticket.
type Ticket struct {
	TicketID        int    `json:"ticketId"`
	TicketNumber    int    `json:"ticketNumber"`
	Subject         string `json:"subject"`
	State           string `json:"state"`
	Product         string `json:"product"`
	Category        string `json:"category"`
	Type            string `json:"type"`
	ServiceName     string `json:"serviceName"`
	AccountID       string `json:"accountId"`
	CreationDate    string `json:"creationDate"`
	UpdateDate      string `json:"updateDate"`
	LastMessageFrom string `json:"lastMessageFrom"`
	CanBeClosed     bool   `json:"canBeClosed"`
}

// TicketMessage is one message of a support ticket.
type TicketMessage struct {
	MessageID    int    `json:"messageId"`
	TicketID     int    `json:"ticketId"`
	From         string `json:"from"`
	Body         string `json:"body"`
	CreationDate string `json:"creationDate"`
	UpdateDate   string `json:"updateDate"`
}

// NewTicket is the body of a ticket creation.
type NewTicket struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Product     string `json:"product,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
	Type        string `json:"type,omitempty"`
}

// TicketCreated is returned by ticket creation.
type TicketCreated struct {
	TicketID     int `json:"ticketId"`
	TicketNumber int `json:"ticketNumber"`
	MessageID    int `json:"messageId"`
}
