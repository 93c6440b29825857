package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Event.ProductCode}} – {{.Event.Description}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #463737 0%, #37393b 100%);
      color: #ffffff;
    }

    .code {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
      margin-bottom: 4px;
    }

    .title {
      font-size: 15px;
      opacity: 0.9;
    }

    .price {
      font-size: 32px;
      font-weight: 700;
      padding: 16px 24px 0 24px;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #e5e7eb;
    }

    .section h3 {
      margin: 0 0 8px 0;
      font-size: 12px;
      font-weight: 600;
      text-transform: uppercase;
      letter-spacing: 0.05em;
      color: #6b7280;
    }

    .meta {
      font-size: 13px;
      color: #374151;
    }

    .meta td {
      padding: 2px 12px 2px 0;
    }

    ul {
      margin: 0;
      padding-left: 18px;
      font-size: 14px;
    }

    li {
      margin-bottom: 4px;
    }

    .category {
      font-weight: 600;
    }

    a {
      color: #2563eb;
      word-break: break-all;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="code">{{.Event.ProductCode}}</div>
      <div class="title">{{.Event.Description}}</div>
    </div>

    <div class="price">{{price .Event.BasicPrice}}</div>

    <div class="section">
      <h3>Circular</h3>
      <table class="meta">
        <tr><td>Effective</td><td>{{day .Event.CircularDate}}</td></tr>
        <tr><td>Source</td><td>{{.Event.SourceDocument}}</td></tr>
        {{if .Event.CircularLink}}<tr><td>Link</td><td><a href="{{.Event.CircularLink}}">{{.Event.CircularLink}}</a></td></tr>{{end}}
      </table>
    </div>

    {{if .Commentary}}
    {{if .Commentary.Summary}}
    <div class="section">
      <h3>AI Summary</h3>
      <ul>
        {{range .Commentary.Summary}}<li>{{.}}</li>{{end}}
      </ul>
    </div>
    {{end}}
    {{if .Commentary.PriceObservations}}
    <div class="section">
      <h3>Observations</h3>
      <ul>
        {{range .Commentary.PriceObservations}}<li><span class="category">[{{.Category}}]</span> {{.Details}}</li>{{end}}
      </ul>
    </div>
    {{end}}
    {{end}}
  </div>
</body>
</html>
`
