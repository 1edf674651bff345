package activity

import (
	"context"
	"fmt"

	"github.com/MarcGrol/bankingdemo/lib/myhttp"
	"github.com/MarcGrol/bankingdemo/services/bankflow/bankflowevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.CreateTopic(c, bankflowevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", bankflowevents.TopicName, err)
	}

	err = s.subscriber.Subscribe(c, bankflowevents.TopicName, myhttp.GuessHostnameWithScheme()+"/activity/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", bankflowevents.TopicName, err)
	}

	return nil
}

func (s *service) OnConsentSetupStarted(c context.Context, topic string, event bankflowevents.ConsentSetupStarted) error {
	return s.register(c, event.FlowUID, "consent-started",
		fmt.Sprintf("consent requested for %s (%s)", event.BankName, event.Country))
}

func (s *service) OnConsentRejected(c context.Context, topic string, event bankflowevents.ConsentRejected) error {
	return s.register(c, event.FlowUID, "consent-rejected", "callback state did not match")
}

func (s *service) OnSessionEstablished(c context.Context, topic string, event bankflowevents.SessionEstablished) error {
	return s.register(c, event.FlowUID, "session-established",
		fmt.Sprintf("session %s with %d accounts", event.SessionID, event.AccountCount))
}

func (s *service) OnTransactionsFetched(c context.Context, topic string, event bankflowevents.TransactionsFetched) error {
	return s.register(c, event.FlowUID, "transactions-fetched",
		fmt.Sprintf("%d transactions of account %s", event.TransactionCount, event.AccountID))
}
