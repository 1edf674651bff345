package bankflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/bankingdemo/lib/myerrors"
	"github.com/MarcGrol/bankingdemo/lib/mylog"
	"github.com/MarcGrol/bankingdemo/lib/mypublisher"
	"github.com/MarcGrol/bankingdemo/lib/mystore"
	"github.com/MarcGrol/bankingdemo/lib/mytime"
	"github.com/MarcGrol/bankingdemo/lib/myuuid"
	"github.com/MarcGrol/bankingdemo/services/bankclient"
	"github.com/MarcGrol/bankingdemo/services/bankflow/bankflowevents"
)

type service struct {
	flowStore mystore.Store[FlowState]
	banking   bankclient.BankingClient
	nower     mytime.Nower
	uuider    myuuid.UUIDer
	logger    mylog.Logger
	publisher mypublisher.Publisher
}

func newService(flowStore mystore.Store[FlowState], banking bankclient.BankingClient, nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *service {
	return &service{
		flowStore: flowStore,
		banking:   banking,
		nower:     nower,
		uuider:    uuider,
		logger:    mylog.New("bankflow"),
		publisher: pub,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, bankflowevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", bankflowevents.TopicName, err)
	}

	return nil
}

func (s *service) listBanks(c context.Context, country string) ([]bankclient.Bank, error) {
	s.logger.Log(c, "", mylog.SeverityInfo, "List banks for country %s", country)

	banks, err := s.banking.ListBanks(c, country)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error listing banks: %s", err))
	}

	return banks, nil
}

func (s *service) startConsent(c context.Context, flowUID string, country string, bankName string, currentHostname string) (FlowState, error) {
	now := s.nower.Now()
	nonce := s.uuider.Create()

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Start consent-setup %s for bank '%s' (%s)", flowUID, bankName, country)

	consentResp, err := s.banking.StartConsent(c, bankclient.StartConsentRequest{
		BankName:    bankName,
		Country:     country,
		RedirectURL: createCallbackURL(currentHostname), // be called back here when the user has authorised
		State:       nonce,
	})
	if err != nil {
		return FlowState{}, myerrors.NewInternalError(fmt.Errorf("error starting consent: %s", err))
	}

	flow := FlowState{}
	err = s.flowStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		flow = FlowState{
			UID:          flowUID,
			Status:       StatusAwaitingCallback,
			Country:      country,
			BankName:     bankName,
			Nonce:        nonce,
			ConsentURL:   consentResp.URL,
			CreatedAt:    now,
			LastModified: &now,
		}
		err := s.flowStore.Put(c, flowUID, flow)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing flow: %s", err))
		}

		err = s.publisher.Publish(c, bankflowevents.TopicName, bankflowevents.ConsentSetupStarted{
			FlowUID:  flowUID,
			BankName: bankName,
			Country:  country,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return FlowState{}, err
	}

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Completed first step of consent-setup %s", flowUID)

	return flow, nil
}

func (s *service) handleCallback(c context.Context, flowUID string, code string, state string) (FlowState, error) {
	now := s.nower.Now()

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Continue consent-setup (exchange-code) %s", flowUID)

	flow := FlowState{}
	rejected := false
	err := s.flowStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		var exists bool
		var err error
		flow, exists, err = s.flowStore.Get(c, flowUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching flow: %s", err))
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("flow with uid %s not found", flowUID))
		}

		if code == flow.LastCode {
			// redirect delivered twice: the code was already exchanged,
			// so the state parameter is not re-examined
			s.logger.Log(c, flowUID, mylog.SeverityInfo, "Code for flow %s already exchanged, skipping", flowUID)
			return nil
		}

		if flow.Nonce != "" && state != "" && state != flow.Nonce {
			rejected = true

			flow.Status = StatusRejected
			flow.LastModified = &now
			err = s.flowStore.Put(c, flowUID, flow)
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error storing flow: %s", err))
			}

			err = s.publisher.Publish(c, bankflowevents.TopicName, bankflowevents.ConsentRejected{
				FlowUID: flowUID,
			})
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
			}

			return nil
		}

		session, err := s.banking.ExchangeCode(c, code)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error exchanging code: %s", err))
		}

		flow.Status = StatusSessionActive
		flow.LastCode = code
		flow.SessionID = session.SessionID
		flow.AccountIDs = accountIDs(session.Accounts)
		flow.LastModified = &now
		err = s.flowStore.Put(c, flowUID, flow)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing flow: %s", err))
		}

		err = s.publisher.Publish(c, bankflowevents.TopicName, bankflowevents.SessionEstablished{
			FlowUID:      flowUID,
			SessionID:    session.SessionID,
			AccountCount: len(session.Accounts),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return FlowState{}, err
	}

	if rejected {
		return flow, &StateMismatchError{FlowUID: flowUID}
	}

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Completed consent-setup (session-established) %s", flowUID)

	return flow, nil
}

func (s *service) getFlow(c context.Context, flowUID string) (FlowState, error) {
	now := s.nower.Now()

	flow, exists, err := s.flowStore.Get(c, flowUID)
	if err != nil {
		return FlowState{}, myerrors.NewInternalError(fmt.Errorf("error fetching flow: %s", err))
	}
	if !exists {
		return FlowState{}, myerrors.NewNotFoundError(fmt.Errorf("flow with uid %s not found", flowUID))
	}

	if flow.SessionID != "" && len(flow.AccountIDs) == 0 {
		// some banks only expose accounts a little while after authorisation
		session, err := s.banking.GetSession(c, flow.SessionID)
		if err != nil {
			return FlowState{}, myerrors.NewInternalError(fmt.Errorf("error fetching session %s: %s", flow.SessionID, err))
		}

		if len(session.Accounts) > 0 {
			flow.AccountIDs = accountIDs(session.Accounts)
			flow.LastModified = &now
			err = s.flowStore.Put(c, flowUID, flow)
			if err != nil {
				return FlowState{}, myerrors.NewInternalError(fmt.Errorf("error storing flow: %s", err))
			}
		}
	}

	return flow, nil
}

func (s *service) fetchTransactions(c context.Context, flowUID string, accountID string, dateFrom string, dateTo string) (TransactionsReport, error) {
	now := s.nower.Now()

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Fetch transactions of account %s for flow %s", accountID, flowUID)

	flow, exists, err := s.flowStore.Get(c, flowUID)
	if err != nil {
		return TransactionsReport{}, myerrors.NewInternalError(fmt.Errorf("error fetching flow: %s", err))
	}
	if !exists {
		return TransactionsReport{}, myerrors.NewNotFoundError(fmt.Errorf("flow with uid %s not found", flowUID))
	}
	if flow.SessionID == "" {
		return TransactionsReport{}, myerrors.NewInvalidInputError(fmt.Errorf("flow %s has no active session", flowUID))
	}

	transactions, err := s.banking.FetchAllTransactions(c, accountID, bankclient.TransactionFilter{
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}, bankclient.DefaultMaxPages)
	if err != nil {
		return TransactionsReport{}, myerrors.NewInternalError(fmt.Errorf("error fetching transactions: %s", err))
	}

	report := TransactionsReport{
		AccountID:    accountID,
		Count:        len(transactions),
		Totals:       totalsPerCurrency(transactions),
		Transactions: transactions,
	}

	err = s.flowStore.RunInTransaction(c, func(c context.Context) error {
		flow.Status = StatusTransactionsFetched
		flow.LastModified = &now
		err := s.flowStore.Put(c, flowUID, flow)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing flow: %s", err))
		}

		err = s.publisher.Publish(c, bankflowevents.TopicName, bankflowevents.TransactionsFetched{
			FlowUID:          flowUID,
			AccountID:        accountID,
			TransactionCount: len(transactions),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return TransactionsReport{}, err
	}

	s.logger.Log(c, flowUID, mylog.SeverityInfo, "Fetched %d transactions of account %s for flow %s", len(transactions), accountID, flowUID)

	return report, nil
}

// totalsPerCurrency sums amounts as decimals: floats would corrupt them.
func totalsPerCurrency(transactions []bankclient.Transaction) map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, tx := range transactions {
		currency := tx.TransactionAmount.Currency
		totals[currency] = totals[currency].Add(tx.TransactionAmount.Amount)
	}

	return totals
}

func accountIDs(accounts []bankclient.Account) []string {
	ids := []string{}
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}

	return ids
}

func createCallbackURL(hostname string) string {
	return fmt.Sprintf("%s/flow/callback", hostname)
}
