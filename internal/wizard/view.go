package wizard

import (
	"time"

	"github.com/realestate-agents/lead_wizard/internal/pricing"
)

// Notice levels.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (c *Controller) notify(level, msg string) {
	c.state.Notices = append(c.state.Notices, Notice{Level: level, Message: msg})
}

// DrainNotices returns pending notices and clears them.
func (c *Controller) DrainNotices() []Notice {
	out := c.state.Notices
	c.state.Notices = nil
	return out
}

// OTPView exposes the code entry without the issued code.
type OTPView struct {
	Cells     [CodeLength]string `json:"cells"`
	Focus     int                `json:"focus"`
	Sent      bool               `json:"sent"`
	Phone     string             `json:"phone,omitempty"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}

// View is a render-ready snapshot of the wizard.
type View struct {
	Flow       string     `json:"flow"`
	Step       int        `json:"step"`
	Steps      int        `json:"steps"`
	Progress   int        `json:"progress"`
	ModalOpen  bool       `json:"modal_open"`
	CanGoBack  bool       `json:"can_go_back"`
	Descriptor Descriptor `json:"descriptor"`
	PriceLabel string     `json:"price_label,omitempty"`
	Form       FormState  `json:"form"`
	Errors     Errors     `json:"errors"`
	Notices    []Notice   `json:"notices"`
	OTP        OTPView    `json:"otp"`
	Sending    bool       `json:"sending"`
	Submitting bool       `json:"submitting"`
	Done       bool       `json:"done"`
}

// View renders the current state. Pending notices are included and drained.
func (c *Controller) View() View {
	st := c.State()
	step := c.current()

	v := View{
		Flow:       st.Flow,
		Step:       st.Step,
		Steps:      len(c.flow.Steps),
		Progress:   st.Step * 100 / c.last(),
		ModalOpen:  st.ModalOpen,
		CanGoBack:  st.Step > 1 && !st.Submitted,
		Descriptor: step.Descriptor,
		Form:       st.Form,
		Errors:     st.Errors,
		Notices:    c.DrainNotices(),
		OTP: OTPView{
			Cells: st.Gate.Cells,
			Focus: st.Gate.Focus,
		},
		Sending:    st.Sending,
		Submitting: st.Submitting,
		Done:       st.Submitted,
	}
	if v.Notices == nil {
		v.Notices = []Notice{}
	}
	if st.Gate.Token != nil {
		v.OTP.Sent = true
		v.OTP.Phone = st.Gate.Token.Phone
		if !st.Gate.Token.ExpiresAt.IsZero() {
			exp := st.Gate.Token.ExpiresAt
			v.OTP.ExpiresAt = &exp
		}
	}
	if step.Kind == KindPrice {
		v.PriceLabel, _ = pricing.FormatPriceRange(*st.Form.price(step.Field))
	}
	return v
}
