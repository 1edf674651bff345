package activity

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/bankingdemo/lib/mycontext"
	"github.com/MarcGrol/bankingdemo/lib/myerrors"
	"github.com/MarcGrol/bankingdemo/lib/myhttp"
	"github.com/MarcGrol/bankingdemo/lib/mylog"
	"github.com/MarcGrol/bankingdemo/lib/mypubsub"
	"github.com/MarcGrol/bankingdemo/lib/mystore"
	"github.com/MarcGrol/bankingdemo/lib/mytime"
	"github.com/MarcGrol/bankingdemo/lib/myuuid"
	"github.com/MarcGrol/bankingdemo/services/bankflow/bankflowevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(store mystore.Store[ActivityRecord], subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	return &webService{
		service: newService(store, subscriber, nower, uuider),
		logger:  mylog.New("activity"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/activity", s.activityPage()).Methods("GET")
	router.HandleFunc("/activity/event", s.handleEventEnvelope()).Methods("POST")

	return s.service.Subscribe(c)
}

//go:embed templates
var templateFolder embed.FS
var (
	activityPageTemplate *template.Template
)

func init() {
	activityPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/activity.html"))
}

func (s *webService) activityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		records, err := s.service.listActivities(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = activityPageTemplate.Execute(w, records)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := bankflowevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
