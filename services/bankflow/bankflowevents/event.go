package bankflowevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/bankingdemo/lib/myerrors"
	"github.com/MarcGrol/bankingdemo/lib/myevents"
)

const (
	TopicName               = "bankflow"
	consentSetupStartedName = TopicName + ".consentSetup.started"
	consentRejectedName     = TopicName + ".consentSetup.rejected"
	sessionEstablishedName  = TopicName + ".session.established"
	transactionsFetchedName = TopicName + ".transactions.fetched"
)

type FlowEventService interface {
	Subscribe(c context.Context) error
	OnConsentSetupStarted(c context.Context, topic string, event ConsentSetupStarted) error
	OnConsentRejected(c context.Context, topic string, event ConsentRejected) error
	OnSessionEstablished(c context.Context, topic string, event SessionEstablished) error
	OnTransactionsFetched(c context.Context, topic string, event TransactionsFetched) error
}

func DispatchEvent(c context.Context, reader io.Reader, service FlowEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case consentSetupStartedName:
		{
			event := ConsentSetupStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnConsentSetupStarted(c, envelope.Topic, event)
		}
	case consentRejectedName:
		{
			event := ConsentRejected{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnConsentRejected(c, envelope.Topic, event)
		}
	case sessionEstablishedName:
		{
			event := SessionEstablished{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnSessionEstablished(c, envelope.Topic, event)
		}
	case transactionsFetchedName:
		{
			event := TransactionsFetched{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnTransactionsFetched(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event type %s", envelope.EventTypeName))
	}
}

type ConsentSetupStarted struct {
	FlowUID  string
	BankName string
	Country  string
}

func (e ConsentSetupStarted) GetEventTypeName() string {
	return consentSetupStartedName
}

func (e ConsentSetupStarted) GetAggregateName() string {
	return e.FlowUID
}

type ConsentRejected struct {
	FlowUID string
}

func (e ConsentRejected) GetEventTypeName() string {
	return consentRejectedName
}

func (e ConsentRejected) GetAggregateName() string {
	return e.FlowUID
}

type SessionEstablished struct {
	FlowUID      string
	SessionID    string
	AccountCount int
}

func (e SessionEstablished) GetEventTypeName() string {
	return sessionEstablishedName
}

func (e SessionEstablished) GetAggregateName() string {
	return e.FlowUID
}

type TransactionsFetched struct {
	FlowUID          string
	AccountID        string
	TransactionCount int
}

func (e TransactionsFetched) GetEventTypeName() string {
	return transactionsFetchedName
}

func (e TransactionsFetched) GetAggregateName() string {
	return e.FlowUID
}
