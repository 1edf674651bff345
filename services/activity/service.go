package activity

import (
	"context"

	"github.com/MarcGrol/bankingdemo/lib/myerrors"
	"github.com/MarcGrol/bankingdemo/lib/mylog"
	"github.com/MarcGrol/bankingdemo/lib/mypubsub"
	"github.com/MarcGrol/bankingdemo/lib/mystore"
	"github.com/MarcGrol/bankingdemo/lib/mytime"
	"github.com/MarcGrol/bankingdemo/lib/myuuid"
)

type service struct {
	store      mystore.Store[ActivityRecord]
	subscriber mypubsub.PubSub
	nower      mytime.Nower
	uuider     myuuid.UUIDer
	logger     mylog.Logger
}

func newService(store mystore.Store[ActivityRecord], subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		store:      store,
		subscriber: subscriber,
		nower:      nower,
		uuider:     uuider,
		logger:     mylog.New("activity"),
	}
}

func (s *service) register(c context.Context, flowUID string, kind string, details string) error {
	uid := s.uuider.Create()

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Activity %s on flow %s: %s", kind, flowUID, details)

	err := s.store.Put(c, uid, ActivityRecord{
		UID:       uid,
		FlowUID:   flowUID,
		Kind:      kind,
		Details:   details,
		CreatedAt: s.nower.Now(),
	})
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}

func (s *service) listActivities(c context.Context) ([]ActivityRecord, error) {
	records, err := s.store.Query(c, nil, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	return records, nil
}
