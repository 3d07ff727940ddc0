package payment

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/skdcommerce/storefront-api/internal/config"
)

// O gateway fala um protocolo posicional: uma string de campos separados por
// pipe cujo layout precisa permanecer byte-estável, porque o sistema remoto
// faz o parse por posição. A assinatura é SHA-256 sobre a chave secreta
// concatenada à mensagem.

// BuildGatewayMessage monta a mensagem posicional de requisição de pagamento.
// Campos: merchant id, order id, 14 campos fixos/placeholder, moeda e URL de
// retorno, exatamente nessa ordem.
func BuildGatewayMessage(gw config.BillDesk, orderID, amount string) string {
	fields := []string{
		gw.MerchantID,
		orderID,
		"NA",
		amount,
		"INR",
		"NA", "NA",
		"F",
		"NA", "NA", "NA", "NA", "NA", "NA", "NA", "NA",
		gw.ReturnURL,
	}
	return strings.Join(fields, "|")
}

// Checksum calcula SHA-256(secretKey + "|" + message) em hex minúsculo
func Checksum(secretKey, message string) string {
	sum := sha256.Sum256([]byte(secretKey + "|" + message))
	return hex.EncodeToString(sum[:])
}

// BuildRedirectURL monta a URL de redirecionamento para o gateway: a mensagem
// assinada é codificada em base64 e embutida como query parameter
func BuildRedirectURL(gw config.BillDesk, orderID, amount string) string {
	message := BuildGatewayMessage(gw, orderID, amount)
	signed := message + "|" + Checksum(gw.SecretKey, message)
	token := base64.StdEncoding.EncodeToString([]byte(signed))
	return fmt.Sprintf("%s?msg=%s", gw.RequestURL, url.QueryEscape(token))
}

// Tabela de aliases dos campos do callback, em ordem de prioridade. O gateway
// é conhecido por usar grafias diferentes para o mesmo campo lógico conforme
// o fluxo; a lista abaixo é o único lugar onde isso é tratado.
var (
	orderIDAliases = []string{"orderid", "OrderId", "ORDERID"}
	statusAliases  = []string{"status", "Status", "trnstatus"}
)

// Tokens de sucesso conhecidos do gateway; qualquer outro valor é falha
const gatewaySuccessCode = "0300"

// CallbackOutcome é a interpretação de um callback do gateway
type CallbackOutcome struct {
	OrderID string
	Success bool
}

// firstAlias retorna o primeiro valor não vazio entre os aliases, na ordem
func firstAlias(params map[string]string, aliases []string) string {
	for _, key := range aliases {
		if v := params[key]; v != "" {
			return v
		}
	}
	return ""
}

// ParseCallback extrai defensivamente os campos do callback e decide o
// resultado. Se um checksum foi enviado e há chave configurada, a mensagem é
// reverificada; checksum inválido força falha mesmo que o status declare
// sucesso.
func ParseCallback(params map[string]string, secretKey string) CallbackOutcome {
	outcome := CallbackOutcome{
		OrderID: firstAlias(params, orderIDAliases),
	}

	if secretKey != "" && params["checksum"] != "" {
		message := params["msg"]
		if message == "" {
			message = params["response"]
		}
		expected := Checksum(secretKey, message)
		if !strings.EqualFold(expected, params["checksum"]) {
			return outcome
		}
	}

	status := strings.ToLower(firstAlias(params, statusAliases))
	outcome.Success = status == "success" ||
		status == gatewaySuccessCode ||
		params["result"] == "success" ||
		params["TxnStatus"] == gatewaySuccessCode
	return outcome
}
