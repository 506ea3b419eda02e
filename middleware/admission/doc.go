// Package admission fornece o pipeline HTTP (net/http) de controle de admissão:
// rate limit por janela fixa, verificações de segurança, validação de schema
// com sanitização e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, checagens, validação) sem net/http
//   - infra: implementações concretas (contador de janela fixa, semáforo, stats), detalhes de infraestrutura
//   - admission (este pacote): middleware HTTP + derivação de identidade + tradução para status/headers/envelopes
//
// Fluxo no gateway:
//
//   1) Aplica os headers de endurecimento (toda resposta os carrega)
//   2) Deriva a identidade do cliente (XFF/X-Real-IP/CF-Connecting-IP + User-Agent)
//   3) Consulta a cota da política no contador de janela fixa
//   4) Verifica método e tamanho declarado do corpo
//   5) Valida o payload contra o schema e sanitiza as strings
//   6) Qualquer estágio pode rejeitar em caráter terminal (429/413/405/400);
//      se todos passam, o handler recebe o payload sanitizado via contexto
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_POLICY, MAX_REQUEST_BYTES, ALLOWED_METHODS e CONCURRENCY_MAX.
package admission
