package bankflow

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/bankingdemo/lib/mycontext"
	"github.com/MarcGrol/bankingdemo/lib/myerrors"
	"github.com/MarcGrol/bankingdemo/lib/myhttp"
	"github.com/MarcGrol/bankingdemo/lib/mylog"
	"github.com/MarcGrol/bankingdemo/lib/mypublisher"
	"github.com/MarcGrol/bankingdemo/lib/mystore"
	"github.com/MarcGrol/bankingdemo/lib/mytime"
	"github.com/MarcGrol/bankingdemo/lib/myuuid"
	"github.com/MarcGrol/bankingdemo/services/bankclient"
)

const (
	flowCookieName = "bankflow_uid"
	defaultCountry = "FR"
)

var supportedCountries = []string{"FR", "DE", "ES", "IT", "NL", "BE"}

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(flowStore mystore.Store[FlowState], banking bankclient.BankingClient, nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	return &webService{
		service: newService(flowStore, banking, nower, uuider, pub),
		logger:  mylog.New("bankflow"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/", s.homePage()).Methods("GET")

	router.HandleFunc("/flow/consent", s.consentPage()).Methods("POST")
	router.HandleFunc("/flow/callback", s.callbackPage()).Methods("GET")
	router.HandleFunc("/flow/session", s.sessionPage()).Methods("GET")
	router.HandleFunc("/flow/transactions", s.transactionsPage()).Methods("POST")

	err := s.service.CreateTopics(context.Background())
	if err != nil {
		return err
	}

	return nil
}

//go:embed templates
var templateFolder embed.FS
var (
	homePageTemplate         *template.Template
	consentPageTemplate      *template.Template
	sessionPageTemplate      *template.Template
	transactionsPageTemplate *template.Template
	rejectedPageTemplate     *template.Template
)

func init() {
	homePageTemplate = template.Must(template.ParseFS(templateFolder, "templates/home.html"))
	consentPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/consent.html"))
	sessionPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/session.html"))
	transactionsPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/transactions.html"))
	rejectedPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/rejected.html"))
}

type consentForm struct {
	Country  string `form:"country"`
	BankName string `form:"bankName"`
}

type transactionsForm struct {
	AccountID string `form:"accountId"`
	DateFrom  string `form:"dateFrom"`
	DateTo    string `form:"dateTo"`
}

type homePageData struct {
	Countries []string
	Country   string
	Banks     []bankclient.Bank
}

func (s *webService) homePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		country := r.URL.Query().Get("country")
		if country == "" {
			country = defaultCountry
		}

		banks, err := s.service.listBanks(c, country)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, errorWriter, homePageTemplate, homePageData{
			Countries: supportedCountries,
			Country:   country,
			Banks:     banks,
		})
	}
}

func (s *webService) consentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		form := consentForm{}
		err = formcodec.NewDecoder().Decode(&form, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		if form.Country == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing country")))
			return
		}
		if form.BankName == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing bankName")))
			return
		}

		flowUID := s.obtainFlowUID(w, r)

		flow, err := s.service.startConsent(c, flowUID, form.Country, form.BankName, myhttp.HostnameWithScheme(r))
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		s.renderPage(c, w, errorWriter, consentPageTemplate, flow)
	}
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		errorParam := r.URL.Query().Get("error")
		if errorParam != "" {
			errorDescription := r.URL.Query().Get("error_description")
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("%s (%s)", errorParam, errorDescription)))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing code")))
			return
		}
		state := r.URL.Query().Get("state")

		cookie, err := r.Cookie(flowCookieName)
		if err != nil || cookie.Value == "" {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("missing flow cookie")))
			return
		}

		flow, err := s.service.handleCallback(c, cookie.Value, code, state)
		if err != nil {
			mismatch := &StateMismatchError{}
			if errors.As(err, &mismatch) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				err = rejectedPageTemplate.Execute(w, flow)
				if err != nil {
					s.logger.Log(c, "", mylog.SeverityError, "Error rendering rejected page: %s", err)
				}
				return
			}
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		http.Redirect(w, r, "/flow/session", http.StatusSeeOther)
	}
}

func (s *webService) sessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cookie, err := r.Cookie(flowCookieName)
		if err != nil || cookie.Value == "" {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("missing flow cookie")))
			return
		}

		flow, err := s.service.getFlow(c, cookie.Value)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		s.renderPage(c, w, errorWriter, sessionPageTemplate, flow)
	}
}

func (s *webService) transactionsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		form := transactionsForm{}
		err = formcodec.NewDecoder().Decode(&form, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		if form.AccountID == "" {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing accountId")))
			return
		}

		cookie, err := r.Cookie(flowCookieName)
		if err != nil || cookie.Value == "" {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("missing flow cookie")))
			return
		}

		report, err := s.service.fetchTransactions(c, cookie.Value, form.AccountID, form.DateFrom, form.DateTo)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		s.renderPage(c, w, errorWriter, transactionsPageTemplate, report)
	}
}

// obtainFlowUID reads the flow uid from the browser cookie or mints a new
// one. The cookie is what makes the redirect from the bank land on the
// same flow record again.
func (s *webService) obtainFlowUID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flowCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	flowUID := s.service.uuider.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     flowCookieName,
		Value:    flowUID,
		Path:     "/",
		HttpOnly: true,
	})

	return flowUID
}

func (s *webService) renderPage(c context.Context, w http.ResponseWriter, errorWriter myhttp.ResponseWriter, tpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := tpl.Execute(w, data)
	if err != nil {
		errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
		return
	}
}
