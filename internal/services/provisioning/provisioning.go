// Package services обрабатывает оплаченные заказы: отмечает оплату, заводит
// клиента, учётную запись и счёт, отправляет письмо и push-уведомление.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/metrics"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/rabbitmq"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
	"github.com/magabrotheeeer/club-checkout/internal/upstream"
	"github.com/magabrotheeeer/club-checkout/internal/wizard"
)

// VATRate ставка НДС, по которой сумма заказа делится на нетто и налог.
var VATRate = decimal.RequireFromString("0.22")

const messageTimeout = 30 * time.Second

// OrderRepository описывает операции хранилища над заказом.
type OrderRepository interface {
	GetOrder(ctx context.Context, id string) (*models.StoredOrder, error)
	// MarkOrderPaid возвращает false, если заказ уже был оплачен.
	MarkOrderPaid(ctx context.Context, id, paymentID string, at time.Time) (bool, error)
	CreateClient(ctx context.Context, c models.Client) (string, error)
	CreateInvoice(ctx context.Context, inv models.Invoice) (string, error)
	SetInvoiceNumber(ctx context.Context, id, number string) error
}

// Accounts создаёт учётные записи мобильного приложения.
type Accounts interface {
	CreateAccount(ctx context.Context, acc upstream.Account) error
}

// Invoicing выставляет счета.
type Invoicing interface {
	CreateInvoice(ctx context.Context, req upstream.InvoiceRequest) (string, error)
}

// Mailer отправляет письмо-подтверждение.
type Mailer interface {
	SendConfirmation(order models.StoredOrder, invoiceNumber string) error
}

// Publisher публикует сообщения в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// ProvisioningService выполняет шаги после подтверждения оплаты.
type ProvisioningService struct {
	orders    OrderRepository
	accounts  Accounts
	invoicing Invoicing
	mailer    Mailer
	publisher Publisher
	loc       *time.Location
	log       *slog.Logger
	now       func() time.Time
}

// NewProvisioningService создает новый экземпляр ProvisioningService.
func NewProvisioningService(orders OrderRepository, accounts Accounts, invoicing Invoicing,
	mailer Mailer, publisher Publisher, loc *time.Location, log *slog.Logger) *ProvisioningService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProvisioningService{
		orders:    orders,
		accounts:  accounts,
		invoicing: invoicing,
		mailer:    mailer,
		publisher: publisher,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// HandlePaidOrder разбирает сообщение из очереди orders.paid. Нечитаемое
// сообщение подтверждается и отбрасывается, ошибка возвращается только когда
// повтор имеет смысл.
func (s *ProvisioningService) HandlePaidOrder(body []byte) error {
	const op = "services.provisioning.HandlePaidOrder"
	var msg models.PaidOrderMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.OrderID == "" {
		s.log.Error("dropping malformed paid order message", slog.String("op", op), slog.String("body", string(body)), sl.Err(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()
	return s.Process(ctx, msg)
}

// Process проводит оплаченный заказ. Повторная доставка того же заказа
// ничего не делает. Шаги после отметки об оплате выполняются независимо:
// сбой одного логируется и не отменяет остальные.
func (s *ProvisioningService) Process(ctx context.Context, msg models.PaidOrderMessage) error {
	const op = "services.provisioning.Process"
	log := s.log.With(slog.String("op", op), slog.String("order_id", msg.OrderID))

	order, err := s.orders.GetOrder(ctx, msg.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("paid order not found, dropping message")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if order.Status == models.OrderPaid {
		log.Info("order already provisioned")
		return nil
	}

	paidAt := s.now()
	changed, err := s.orders.MarkOrderPaid(ctx, order.ID, msg.PaymentID, paidAt)
	s.record("mark_paid", err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		log.Info("order already marked as paid")
		return nil
	}
	order.Status = models.OrderPaid
	order.PaymentID = msg.PaymentID
	order.PaidAt = &paidAt

	if err := s.createClient(ctx, *order); err != nil {
		log.Error("failed to create client", sl.Err(err))
	}
	if err := s.createAccount(ctx, *order); err != nil {
		log.Error("failed to create account", sl.Err(err))
	}

	number, err := s.createInvoice(ctx, *order)
	if err != nil {
		log.Error("failed to create invoice", sl.Err(err))
	}

	err = s.mailer.SendConfirmation(*order, number)
	s.record("email", err)
	if err != nil {
		log.Error("failed to send confirmation email", sl.Err(err))
	}

	err = s.publisher.Publish(rabbitmq.ExchangeNotifications, rabbitmq.RoutingKeyPush, welcomePush(*order))
	s.record("push", err)
	if err != nil {
		log.Error("failed to publish push notification", sl.Err(err))
	}

	log.Info("order provisioned", slog.String("invoice", number))
	return nil
}

func (s *ProvisioningService) record(step string, err error) {
	metrics.RecordProvisioningStep(step, metrics.Result(err))
}

func (s *ProvisioningService) createClient(ctx context.Context, order models.StoredOrder) error {
	start, months, err := s.period(order)
	if err == nil {
		_, err = s.orders.CreateClient(ctx, models.Client{
			OrderID:      order.ID,
			ClubID:       order.Club.ID,
			PlanID:       order.Plan.ID,
			FirstName:    order.Customer.FirstName,
			LastName:     order.Customer.LastName,
			Email:        order.Customer.Email,
			Phone:        order.Customer.PhonePrefix + order.Customer.Phone,
			FiscalCode:   strings.ToUpper(order.Customer.FiscalCode),
			PasswordHash: order.PasswordHash,
			StartDate:    start,
			Months:       months,
		})
	}
	s.record("client", err)
	return err
}

func (s *ProvisioningService) createAccount(ctx context.Context, order models.StoredOrder) error {
	err := s.accounts.CreateAccount(ctx, upstream.Account{
		OrderID:      order.ID,
		Email:        order.Customer.Email,
		PasswordHash: order.PasswordHash,
		FirstName:    order.Customer.FirstName,
		LastName:     order.Customer.LastName,
		Phone:        order.Customer.PhonePrefix + order.Customer.Phone,
		ClubID:       order.Club.ID,
		PlanID:       order.Plan.ID,
		StartDate:    order.Subscription.StartDate,
		EndDate:      order.Subscription.EndDate,
	})
	s.record("account", err)
	return err
}

func (s *ProvisioningService) createInvoice(ctx context.Context, order models.StoredOrder) (string, error) {
	net, vat, gross := SplitVAT(order.Plan.Price)
	c := order.Customer
	number, err := s.invoicing.CreateInvoice(ctx, upstream.InvoiceRequest{
		OrderID: order.ID,
		Customer: upstream.InvoiceCustomer{
			Name:       c.FirstName + " " + c.LastName,
			FiscalCode: strings.ToUpper(c.FiscalCode),
			Email:      c.Email,
			Address:    c.Address,
			City:       c.City,
			PostalCode: c.PostalCode,
			Province:   strings.ToUpper(c.Province),
		},
		Lines: []upstream.InvoiceLine{{
			Description: fmt.Sprintf("%s membership, %s", order.Plan.Name, order.Club.Name),
			Net:         net.StringFixed(2),
			VATRate:     VATRate.StringFixed(2),
			VAT:         vat.StringFixed(2),
			Gross:       gross.StringFixed(2),
		}},
		Net:   net.StringFixed(2),
		VAT:   vat.StringFixed(2),
		Gross: gross.StringFixed(2),
	})
	if err == nil {
		_, err = s.orders.CreateInvoice(ctx, models.Invoice{
			OrderID: order.ID,
			Number:  number,
			Net:     net.StringFixed(2),
			VAT:     vat.StringFixed(2),
			Gross:   gross.StringFixed(2),
		})
	}
	if err == nil {
		err = s.orders.SetInvoiceNumber(ctx, order.ID, number)
	}
	s.record("invoice", err)
	if err != nil {
		return "", err
	}
	return number, nil
}

// period возвращает дату начала абонемента и его длительность в месяцах.
// Если длительность не пришла в заказе, она выводится из дат периода.
func (s *ProvisioningService) period(order models.StoredOrder) (time.Time, int, error) {
	start, err := wizard.ParseDate(order.Subscription.StartDate, s.loc)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid start date %q: %w", order.Subscription.StartDate, err)
	}
	months := order.Plan.Duration
	if months <= 0 {
		end, err := wizard.ParseDate(order.Subscription.EndDate, s.loc)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid end date %q: %w", order.Subscription.EndDate, err)
		}
		months = (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	}
	if months <= 0 {
		return time.Time{}, 0, fmt.Errorf("invalid subscription period %s..%s", order.Subscription.StartDate, order.Subscription.EndDate)
	}
	return start, months, nil
}

// SplitVAT делит сумму с НДС на нетто и налог. Нетто округляется до центов,
// налог считается остатком, поэтому net+vat всегда равно gross.
func SplitVAT(amount float64) (net, vat, gross decimal.Decimal) {
	gross = decimal.NewFromFloat(amount).Round(2)
	net = gross.Div(decimal.NewFromInt(1).Add(VATRate)).Round(2)
	vat = gross.Sub(net)
	return net, vat, gross
}

func welcomePush(order models.StoredOrder) models.PushMessage {
	return models.PushMessage{
		Email: order.Customer.Email,
		Title: "Welcome to " + order.Club.Name,
		Body:  fmt.Sprintf("Your %s membership starts on %s.", order.Plan.Name, order.Subscription.StartDate),
		Data: map[string]string{
			"order_id": order.ID,
			"club_id":  order.Club.ID,
		},
	}
}
